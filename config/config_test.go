package config

import (
	"testing"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetInt(KeyDepth), 3)
	is.Equal(cfg.GetString(KeyEvaluator), EvaluatorCorner)
	is.Equal(cfg.GetString(KeyPruning), PruningProbability)
	is.Equal(cfg.GetFloat64(KeyProbThreshold), 0.0001)
	is.Equal(cfg.GetInt(KeyMaxChanceCells), 6)
	is.Equal(cfg.GetInt(KeyCacheCeiling), 1<<22)
	is.Equal(cfg.CornerWeights().AnchorMinRank, 7)
	is.Equal(cfg.SnakeWeights().Base, DefaultSnakeBase)
}

func TestLoadOverrides(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	err := cfg.Load([]string{"depth=5", "evaluator=snake"})
	is.NoErr(err)
	is.Equal(cfg.GetInt(KeyDepth), 5)
	is.Equal(cfg.GetString(KeyEvaluator), EvaluatorSnake)

	err = cfg.Load([]string{"depth"})
	is.True(err != nil)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("TWENTY48_DEPTH", "7")
	t.Setenv("TWENTY48_SNAKE_MERGE_WEIGHT", "450")
	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	is.Equal(cfg.GetInt(KeyDepth), 7)
	is.Equal(cfg.SnakeWeights().MergePotential, 450.0)
}

func TestWeightFingerprint(t *testing.T) {
	is := is.New(t)
	a := DefaultConfig()
	b := DefaultConfig()
	is.Equal(a.WeightFingerprint(), b.WeightFingerprint())

	b.Set(KeySnakeMergeWeight, 501.0)
	is.True(a.WeightFingerprint() != b.WeightFingerprint())

	// Depth is per call, not part of the search identity.
	c := DefaultConfig()
	c.Set(KeyDepth, 9)
	is.Equal(a.WeightFingerprint(), c.WeightFingerprint())
}
