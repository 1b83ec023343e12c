package expectimax

import (
	"math"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/move"
	"github.com/domino14/twenty48/movegen"
)

var testConfig = config.DefaultConfig()

func newTestSolver() *Solver {
	return NewSolver(equity.NewCornerEvaluator(&testConfig))
}

func TestCacheDepthGate(t *testing.T) {
	is := is.New(t)
	c := newCache(0)
	b := board.FromRanks([16]int{1, 2, 3})
	c.store(b, 3, 42.5)

	_, ok := c.lookup(b, 4)
	is.True(!ok)

	got, ok := c.lookup(b, 3)
	is.True(ok)
	is.Equal(got, 42.5)

	got, ok = c.lookup(b, 2)
	is.True(ok)
	is.Equal(got, 42.5)

	stats := c.Stats()
	is.Equal(stats.Lookups, uint64(3))
	is.Equal(stats.Hits, uint64(2))
	is.Equal(stats.Entries, 1)
}

func TestCacheCeilingClears(t *testing.T) {
	is := is.New(t)
	c := newCache(4)
	for i := 1; i <= 5; i++ {
		c.store(board.Board(i), 1, float64(i))
	}
	stats := c.Stats()
	is.Equal(stats.Clears, uint64(1))
	is.Equal(stats.Entries, 0)
	is.Equal(stats.Stores, uint64(5))
}

func TestEffectiveDepth(t *testing.T) {
	is := is.New(t)
	s := newTestSolver()

	is.Equal(s.EffectiveDepth(board.Board(0), 0), 0)
	is.Equal(s.EffectiveDepth(board.Board(0), -2), 0)
	// Few distinct ranks: the floor of 2 applies.
	is.Equal(s.EffectiveDepth(board.Board(0), 1), 2)

	busy := board.FromRanks([16]int{1, 2, 3, 4, 5, 6})
	is.Equal(s.EffectiveDepth(busy, 3), 4)
	is.Equal(s.EffectiveDepth(busy, 9), 9)

	// Five distinct ranks widen a shallow request to depth 3.
	five := board.FromRanks([16]int{1, 2, 3, 4, 5})
	is.Equal(s.EffectiveDepth(five, 1), 3)
}

func TestChanceValueDepthOne(t *testing.T) {
	is := is.New(t)
	s := newTestSolver()
	b := board.Board(0).SetRank(0, 0, 1)

	// One ply of chance: average over every empty cell and both spawn
	// ranks, then evaluate statically.
	expected := 0.0
	open := 0
	for cell := 0; cell < 16; cell++ {
		if b.Rank(cell/4, cell%4) != 0 {
			continue
		}
		open++
		expected += 0.9*s.ev.Evaluate(b.PlaceAt(cell, 1)) + 0.1*s.ev.Evaluate(b.PlaceAt(cell, 2))
	}
	expected /= float64(open)

	is.Equal(open, 15)
	is.True(math.Abs(s.chanceValue(b, 1, 1.0)-expected) < 1e-9)
}

func TestMaxValueDepthOne(t *testing.T) {
	is := is.New(t)
	s := newTestSolver()
	b := board.FromRanks([16]int{1, 1})

	// One ply of max: merge score plus the static value of the moved
	// board, best over legal moves.
	best := math.Inf(-1)
	for _, d := range move.AllDirections {
		nb, ms, changed := movegen.Apply(s.tbl, b, d)
		if !changed {
			continue
		}
		if v := ms + s.ev.Evaluate(nb); v > best {
			best = v
		}
	}
	is.Equal(s.maxValue(b, 1, 1.0), best)
}

func TestStuckMaxValueEvaluates(t *testing.T) {
	is := is.New(t)
	s := newTestSolver()
	stuck := board.FromRanks([16]int{
		1, 2, 1, 2,
		2, 1, 2, 1,
		1, 2, 1, 2,
		2, 1, 2, 1,
	})
	is.Equal(s.maxValue(stuck, 3, 1.0), s.ev.Evaluate(stuck))
	is.Equal(len(s.RankedMoves(stuck, 3)), 0)
}

func TestChanceValueNoEmpties(t *testing.T) {
	is := is.New(t)
	s := newTestSolver()
	full := board.FromRanks([16]int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	is.Equal(s.chanceValue(full, 5, 1.0), s.ev.Evaluate(full))
	is.Equal(s.cache.Stats().Stores, uint64(0))
}

func TestExactTiesKeepDirectionOrder(t *testing.T) {
	is := is.New(t)
	s := newTestSolver()
	// A single small tile dead center: all four slides are legal and
	// score identically at depth 0 by symmetry.
	b := board.Board(0).SetRank(1, 1, 1)
	ranked := s.RankedMoves(b, 0)
	is.Equal(len(ranked), 4)
	for i := 1; i < 4; i++ {
		is.Equal(ranked[i].Score, ranked[0].Score)
	}
	is.Equal(ranked[0].Dir, move.Up)
	is.Equal(ranked[1].Dir, move.Down)
	is.Equal(ranked[2].Dir, move.Left)
	is.Equal(ranked[3].Dir, move.Right)
}

func TestRankedMovesSortedAndIdempotent(t *testing.T) {
	is := is.New(t)
	s := newTestSolver()
	b := board.FromRanks([16]int{
		1, 1, 2, 0,
		0, 3, 0, 0,
		0, 0, 2, 0,
		1, 0, 0, 0,
	})
	first := s.RankedMoves(b, 3)
	is.True(len(first) > 0)
	for i := 1; i < len(first); i++ {
		is.True(first[i-1].Score >= first[i].Score)
	}
	second := s.RankedMoves(b, 3)
	is.Equal(first, second)
}

func TestProbabilityPruningSearchesFewerNodes(t *testing.T) {
	is := is.New(t)
	b := board.FromRanks([16]int{1, 1, 2, 3})

	pruned := newTestSolver()
	pruned.RankedMoves(b, 4)

	exhaustive := newTestSolver()
	exhaustive.SetProbThreshold(0)
	exhaustive.RankedMoves(b, 4)

	is.True(pruned.Stats().Nodes <= exhaustive.Stats().Nodes)
	is.True(exhaustive.Stats().Nodes > 0)
}

func TestSpawnCellSelection(t *testing.T) {
	is := is.New(t)
	b := board.FromRanks([16]int{
		1, 0, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 1,
	})

	// Probability policy enumerates every empty cell in scan order.
	s := newTestSolver()
	is.Equal(len(s.spawnCells(b)), 13)

	// Cell-limit keeps the most crowded cells, scan order on ties.
	s.SetPolicy(PruneCellLimit)
	is.Equal(s.spawnCells(b), []int{1, 5, 8, 11, 14, 2})
}

func TestSpawnCellPocketPriority(t *testing.T) {
	is := is.New(t)
	// Cell 1 sits in a pocket with three occupied neighbors; cell 15
	// is fully isolated. When the cap forces a choice, the pocket is
	// selected first and the isolated cell not at all.
	b := board.FromRanks([16]int{
		1, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	})
	s := newTestSolver()
	s.SetPolicy(PruneCellLimit)
	cells := s.spawnCells(b)
	is.Equal(len(cells), DefaultMaxChanceCells)
	is.Equal(cells[0], 1)
	for _, cell := range cells {
		is.True(cell != 15)
	}
}

func TestParsePolicy(t *testing.T) {
	is := is.New(t)
	p, err := ParsePolicy("probability")
	is.NoErr(err)
	is.Equal(p, PruneProbability)

	p, err = ParsePolicy("cell-limit")
	is.NoErr(err)
	is.Equal(p, PruneCellLimit)
	is.Equal(p.String(), "cell-limit")

	_, err = ParsePolicy("alpha-beta")
	is.True(err != nil)
}

func TestMemorySizedCeiling(t *testing.T) {
	is := is.New(t)
	n := MemorySizedCeiling(0.25)
	is.True(n >= 1<<16)
	is.Equal(n&(n-1), 0)
}

func BenchmarkRankedMoves(b *testing.B) {
	s := newTestSolver()
	bd := board.FromRanks([16]int{1, 1, 2, 3, 0, 2, 0, 0, 4, 0, 0, 0, 5, 0, 0, 1})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.RankedMoves(bd, 3)
	}
}
