// Package expectimax searches the move tree of a position. Max nodes
// pick the best legal slide; chance nodes average over the random tile
// the host drops after each slide, 2 with probability 0.9 and 4 with
// probability 0.1. Exhaustive expansion explodes fast, so a solver
// prunes with exactly one of two policies and memoizes chance nodes in
// a per-solver cache.
package expectimax

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/move"
	"github.com/domino14/twenty48/movegen"
	"github.com/domino14/twenty48/rowtable"
)

const (
	// DefaultProbThreshold is the cumulative-probability cutoff for the
	// probability policy.
	DefaultProbThreshold = 0.0001
	// DefaultMaxChanceCells is the spawn-cell cap for the cell-limit
	// policy.
	DefaultMaxChanceCells = 6
)

// Policy selects how chance nodes bound their branching. A solver runs
// exactly one policy; they do not compose.
type Policy uint8

const (
	// PruneProbability stops expanding once the cumulative probability
	// of reaching a node falls below a threshold.
	PruneProbability Policy = iota
	// PruneCellLimit caps how many spawn cells a chance node examines,
	// preferring the most crowded cells.
	PruneCellLimit
)

func (p Policy) String() string {
	if p == PruneCellLimit {
		return "cell-limit"
	}
	return "probability"
}

// ParsePolicy maps a policy name to its Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "probability":
		return PruneProbability, nil
	case "cell-limit":
		return PruneCellLimit, nil
	default:
		return 0, fmt.Errorf("unknown pruning policy %v", s)
	}
}

// Solver runs expectimax searches. It is not safe for concurrent use;
// concurrent searches each need their own solver so that caches are
// never shared.
type Solver struct {
	tbl   *rowtable.Tables
	ev    equity.Evaluator
	cache *Cache

	policy         Policy
	probThreshold  float64
	maxChanceCells int

	nodes          uint64
	evals          uint64
	effectiveDepth int
}

// SolverStats describes the most recent RankedMoves call.
type SolverStats struct {
	Nodes          uint64
	Evals          uint64
	EffectiveDepth int
	Cache          CacheStats
}

func NewSolver(ev equity.Evaluator) *Solver {
	return &Solver{
		tbl:            rowtable.Get(),
		ev:             ev,
		cache:          newCache(DefaultCacheCeiling),
		policy:         PruneProbability,
		probThreshold:  DefaultProbThreshold,
		maxChanceCells: DefaultMaxChanceCells,
	}
}

func (s *Solver) SetPolicy(p Policy)         { s.policy = p }
func (s *Solver) SetProbThreshold(t float64) { s.probThreshold = t }
func (s *Solver) SetMaxChanceCells(n int)    { s.maxChanceCells = n }

// SetCacheCeiling replaces the cache with an empty one bounded at n
// entries.
func (s *Solver) SetCacheCeiling(n int) { s.cache = newCache(n) }

func (s *Solver) Evaluator() equity.Evaluator { return s.ev }
func (s *Solver) Policy() Policy              { return s.policy }

func (s *Solver) Stats() SolverStats {
	return SolverStats{
		Nodes:          s.nodes,
		Evals:          s.evals,
		EffectiveDepth: s.effectiveDepth,
		Cache:          s.cache.Stats(),
	}
}

// RankedMoves searches every legal move from b and returns them sorted
// best first. Equal scores keep direction-enum order. The cache resets
// on entry, so identical calls return identical results.
func (s *Solver) RankedMoves(b board.Board, depth int) []move.RankedMove {
	start := time.Now()
	s.cache.Reset()
	s.nodes, s.evals = 0, 0
	ed := s.EffectiveDepth(b, depth)
	s.effectiveDepth = ed

	ranked := make([]move.RankedMove, 0, 4)
	for _, d := range move.AllDirections {
		nb, ms, changed := movegen.Apply(s.tbl, b, d)
		if !changed {
			continue
		}
		ranked = append(ranked, move.RankedMove{
			Dir:   d,
			Score: ms + s.chanceValue(nb, ed, 1.0),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			return ranked[i].Dir < ranked[j].Dir
		}
		return ranked[i].Score > ranked[j].Score
	})

	log.Debug().Int("depth", depth).
		Int("effective-depth", ed).
		Int("legal-moves", len(ranked)).
		Uint64("nodes", s.nodes).
		Uint64("cache-hits", s.cache.hits).
		Dur("elapsed", time.Since(start)).
		Msg("ranked-moves")
	return ranked
}

// EffectiveDepth widens shallow requests on busy boards: the more
// distinct ranks on the board, the further ahead the search looks.
// Depth 0 is honored as-is and yields a static ranking.
func (s *Solver) EffectiveDepth(b board.Board, depth int) int {
	if depth <= 0 {
		return 0
	}
	adaptive := 2
	if d := b.DistinctRanks(); d >= 4 {
		adaptive = d - 2
	}
	return max(depth, adaptive)
}

func (s *Solver) maxValue(b board.Board, depth int, cprob float64) float64 {
	if depth == 0 {
		s.evals++
		return s.ev.Evaluate(b)
	}
	s.nodes++
	best := math.Inf(-1)
	moved := false
	for _, d := range move.AllDirections {
		nb, ms, changed := movegen.Apply(s.tbl, b, d)
		if !changed {
			continue
		}
		moved = true
		if v := ms + s.chanceValue(nb, depth-1, cprob); v > best {
			best = v
		}
	}
	if !moved {
		// Stuck position. Score it where it stands.
		s.evals++
		return s.ev.Evaluate(b)
	}
	return best
}

func (s *Solver) chanceValue(b board.Board, depth int, cprob float64) float64 {
	if depth == 0 || (s.policy == PruneProbability && cprob < s.probThreshold) {
		s.evals++
		return s.ev.Evaluate(b)
	}
	if score, ok := s.cache.lookup(b, depth); ok {
		return score
	}
	s.nodes++
	cells := s.spawnCells(b)
	if len(cells) == 0 {
		s.evals++
		return s.ev.Evaluate(b)
	}
	perCell := cprob / float64(len(cells))
	total := 0.0
	for _, cell := range cells {
		total += 0.9 * s.maxValue(b.PlaceAt(cell, 1), depth-1, perCell*0.9)
		total += 0.1 * s.maxValue(b.PlaceAt(cell, 2), depth-1, perCell*0.1)
	}
	result := total / float64(len(cells))
	s.cache.store(b, depth, result)
	return result
}

// spawnCells lists the empty cells a chance node branches on. Under the
// cell-limit policy, when more cells are open than the cap, the cells
// with the most occupied orthogonal neighbors are kept; row-major scan
// order breaks ties.
func (s *Solver) spawnCells(b board.Board) []int {
	var buf [16]int
	n := 0
	for i := 0; i < 16; i++ {
		if b>>(4*i)&0xF == 0 {
			buf[n] = i
			n++
		}
	}
	cells := buf[:n]
	if s.policy != PruneCellLimit || n <= s.maxChanceCells {
		return cells
	}
	var counts [16]int
	for _, cell := range cells {
		counts[cell] = occupiedNeighbors(b, cell)
	}
	sort.SliceStable(cells, func(i, j int) bool {
		return counts[cells[i]] > counts[cells[j]]
	})
	return cells[:s.maxChanceCells]
}

func occupiedNeighbors(b board.Board, cell int) int {
	r, c := cell/4, cell%4
	n := 0
	if r > 0 && b.Rank(r-1, c) != 0 {
		n++
	}
	if r < 3 && b.Rank(r+1, c) != 0 {
		n++
	}
	if c > 0 && b.Rank(r, c-1) != 0 {
		n++
	}
	if c < 3 && b.Rank(r, c+1) != 0 {
		n++
	}
	return n
}
