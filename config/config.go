// Package config loads and holds runtime settings: search options,
// evaluator and pruning selection, and the weight sets the evaluators
// read. Values come from built-in defaults, then an optional config
// file, then TWENTY48_* environment variables, then explicit key=value
// overrides, later sources winning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/spf13/viper"
)

const envPrefix = "twenty48"

// Setting keys.
const (
	KeyDebug            = "debug"
	KeyDepth            = "depth"
	KeyEvaluator        = "evaluator"
	KeyPruning          = "pruning"
	KeyProbThreshold    = "prob-threshold"
	KeyMaxChanceCells   = "max-chance-cells"
	KeyCacheCeiling     = "cache-ceiling"
	KeyCacheMemFraction = "cache-mem-fraction"
	KeyCPUProfile       = "cpu-profile"
	KeyMemProfile       = "mem-profile"

	KeyCornerAnchorMinRank   = "corner-anchor-min-rank"
	KeyCornerBonus           = "corner-bonus"
	KeyCornerEdgePenalty     = "corner-edge-penalty"
	KeyCornerInteriorPenalty = "corner-interior-penalty"

	KeySnakeSmoothWeight   = "snake-smooth-weight"
	KeySnakeMonoWeight     = "snake-mono-weight"
	KeySnakeMergeWeight    = "snake-merge-weight"
	KeySnakeScatterWeight  = "snake-scatter-weight"
	KeySnakeChainWeight    = "snake-chain-weight"
	KeySnakeScatterMinRank = "snake-scatter-min-rank"
)

// Evaluator and pruning values for KeyEvaluator / KeyPruning.
const (
	EvaluatorCorner = "corner"
	EvaluatorSnake  = "snake"

	PruningProbability = "probability"
	PruningCellLimit   = "cell-limit"
)

// CornerWeights parameterizes the corner evaluator's placement term.
type CornerWeights struct {
	AnchorMinRank   int
	CornerBonus     float64
	EdgePenalty     float64
	InteriorPenalty float64
}

// SnakeWeights parameterizes the snake evaluator. Base is the gradient
// the positional term maximizes over all eight orientations of.
type SnakeWeights struct {
	Base           [4][4]float64
	Smoothness     float64
	Monotonicity   float64
	MergePotential float64
	Scatter        float64
	Chain          float64
	ScatterMinRank int
}

// DefaultSnakeBase is the base gradient matrix: a serpentine descent
// from the top-left corner.
var DefaultSnakeBase = [4][4]float64{
	{438, 292, 195, 130},
	{26, 38, 58, 87},
	{17, 11, 8, 5},
	{1, 2, 2, 3},
}

// Config wraps a viper instance. Use DefaultConfig for tests and Load
// for binaries.
type Config struct {
	v *viper.Viper
}

// DefaultConfig returns a config holding only the built-in defaults.
// It reads no files and no environment.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	return Config{v: v}
}

// Load initializes the config from defaults, an optional twenty48.yaml
// in the working directory or ~/.twenty48, the environment, and any
// key=value args.
func (c *Config) Load(args []string) error {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(envPrefix)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "."+envPrefix))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, arg := range args {
		key, val, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("bad config override %v; need key=value", arg)
		}
		v.Set(key, val)
	}
	c.v = v
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyDepth, 3)
	v.SetDefault(KeyEvaluator, EvaluatorCorner)
	v.SetDefault(KeyPruning, PruningProbability)
	v.SetDefault(KeyProbThreshold, 0.0001)
	v.SetDefault(KeyMaxChanceCells, 6)
	v.SetDefault(KeyCacheCeiling, 1<<22)
	v.SetDefault(KeyCacheMemFraction, 0.0)
	v.SetDefault(KeyCPUProfile, "")
	v.SetDefault(KeyMemProfile, "")

	v.SetDefault(KeyCornerAnchorMinRank, 7)
	v.SetDefault(KeyCornerBonus, 100.0)
	v.SetDefault(KeyCornerEdgePenalty, 200.0)
	v.SetDefault(KeyCornerInteriorPenalty, 500.0)

	v.SetDefault(KeySnakeSmoothWeight, 100.0)
	v.SetDefault(KeySnakeMonoWeight, 200.0)
	v.SetDefault(KeySnakeMergeWeight, 500.0)
	v.SetDefault(KeySnakeScatterWeight, 350.0)
	v.SetDefault(KeySnakeChainWeight, 750.0)
	v.SetDefault(KeySnakeScatterMinRank, 4)
}

func (c *Config) Get(key string) interface{}        { return c.v.Get(key) }
func (c *Config) GetString(key string) string       { return c.v.GetString(key) }
func (c *Config) GetBool(key string) bool           { return c.v.GetBool(key) }
func (c *Config) GetInt(key string) int             { return c.v.GetInt(key) }
func (c *Config) GetFloat64(key string) float64     { return c.v.GetFloat64(key) }
func (c *Config) Set(key string, value interface{}) { c.v.Set(key, value) }

// AllSettings returns every setting for diagnostic logging.
func (c *Config) AllSettings() map[string]interface{} { return c.v.AllSettings() }

// CornerWeights assembles the corner evaluator's weight set.
func (c *Config) CornerWeights() CornerWeights {
	return CornerWeights{
		AnchorMinRank:   c.v.GetInt(KeyCornerAnchorMinRank),
		CornerBonus:     c.v.GetFloat64(KeyCornerBonus),
		EdgePenalty:     c.v.GetFloat64(KeyCornerEdgePenalty),
		InteriorPenalty: c.v.GetFloat64(KeyCornerInteriorPenalty),
	}
}

// SnakeWeights assembles the snake evaluator's weight set. The base
// matrix is fixed; the term weights come from settings.
func (c *Config) SnakeWeights() SnakeWeights {
	return SnakeWeights{
		Base:           DefaultSnakeBase,
		Smoothness:     c.v.GetFloat64(KeySnakeSmoothWeight),
		Monotonicity:   c.v.GetFloat64(KeySnakeMonoWeight),
		MergePotential: c.v.GetFloat64(KeySnakeMergeWeight),
		Scatter:        c.v.GetFloat64(KeySnakeScatterWeight),
		Chain:          c.v.GetFloat64(KeySnakeChainWeight),
		ScatterMinRank: c.v.GetInt(KeySnakeScatterMinRank),
	}
}

// WeightFingerprint hashes the evaluator selection, pruning policy,
// search options, and effective weight sets. Two configs that search
// identically share a fingerprint; results tagged with it are
// comparable.
func (c *Config) WeightFingerprint() uint64 {
	canonical := fmt.Sprintf("%s|%s|%g|%d|%+v|%+v",
		c.GetString(KeyEvaluator),
		c.GetString(KeyPruning),
		c.GetFloat64(KeyProbThreshold),
		c.GetInt(KeyMaxChanceCells),
		c.CornerWeights(),
		c.SnakeWeights(),
	)
	return xxhash.Sum64String(canonical)
}
