package equity

import (
	"math"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
)

// Fixed shape constants of the snake evaluation. The tunable term
// weights live in config.SnakeWeights.
const (
	lossPenalty     = 200000.0
	emptyLowWeight  = 5000.0
	emptyHighWeight = 3000.0
	emptyLogWeight  = 5000.0

	anchorCornerMult   = 5.0
	anchorEdgeMult     = 3.0
	anchorInteriorMult = 10.0
)

var cornerCells = [4]int{0, 3, 12, 15}

var neighborCells [16][]int

func init() {
	for i := 0; i < 16; i++ {
		r, c := i/4, i%4
		if r > 0 {
			neighborCells[i] = append(neighborCells[i], i-4)
		}
		if r < 3 {
			neighborCells[i] = append(neighborCells[i], i+4)
		}
		if c > 0 {
			neighborCells[i] = append(neighborCells[i], i-1)
		}
		if c < 3 {
			neighborCells[i] = append(neighborCells[i], i+1)
		}
	}
}

// SnakeEvaluator scores a position on a serpentine positional gradient
// plus open-space, anchoring, smoothness, monotonicity, merge, scatter,
// and chain terms. Every term is invariant under the eight board
// symmetries; the positional gradient achieves that by maximizing over
// all eight orientations of its base matrix.
type SnakeEvaluator struct {
	w       config.SnakeWeights
	orients [8][16]float64
}

func NewSnakeEvaluator(cfg *config.Config) *SnakeEvaluator {
	se := &SnakeEvaluator{w: cfg.SnakeWeights()}
	se.orients = orientations(se.w.Base)
	return se
}

func (se *SnakeEvaluator) Evaluate(b board.Board) float64 {
	ranks := unpackRanks(b)
	return se.positional(&ranks) +
		emptiesTerm(b.CountEmpty()) +
		anchorTerm(&ranks) -
		se.w.Smoothness*roughness(&ranks) +
		se.w.Monotonicity*monotonicity(&ranks) +
		se.w.MergePotential*mergePotential(&ranks) -
		se.w.Scatter*se.scatterMass(&ranks) +
		se.w.Chain*se.chainMass(&ranks)
}

func (se *SnakeEvaluator) Terms(b board.Board) []Term {
	ranks := unpackRanks(b)
	return []Term{
		{"positional", se.positional(&ranks)},
		{"empties", emptiesTerm(b.CountEmpty())},
		{"anchor", anchorTerm(&ranks)},
		{"smoothness", -se.w.Smoothness * roughness(&ranks)},
		{"monotonicity", se.w.Monotonicity * monotonicity(&ranks)},
		{"merge-potential", se.w.MergePotential * mergePotential(&ranks)},
		{"scatter", -se.w.Scatter * se.scatterMass(&ranks)},
		{"chain", se.w.Chain * se.chainMass(&ranks)},
	}
}

func (se *SnakeEvaluator) Type() string { return config.EvaluatorSnake }

// positional is the best dot product of squared ranks against any
// orientation of the base gradient.
func (se *SnakeEvaluator) positional(ranks *[16]int) float64 {
	best := math.Inf(-1)
	for o := range se.orients {
		dot := 0.0
		for i, r := range ranks {
			dot += float64(r*r) * se.orients[o][i]
		}
		if dot > best {
			best = dot
		}
	}
	return best
}

func emptiesTerm(empty int) float64 {
	switch {
	case empty == 0:
		return -lossPenalty
	case empty <= 2:
		return emptyLowWeight * float64(empty)
	default:
		return emptyHighWeight*float64(empty) + emptyLogWeight*math.Log2(float64(empty))
	}
}

// anchorTerm checks where the maximum value sits, by membership rather
// than position, so equal maxima anywhere on the preferred ring count.
func anchorTerm(ranks *[16]int) float64 {
	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	if maxRank == 0 {
		return 0
	}
	face := float64(int(1) << maxRank)
	for _, i := range cornerCells {
		if ranks[i] == maxRank {
			return anchorCornerMult * face
		}
	}
	for i, r := range ranks {
		if r == maxRank && onEdge(i) {
			return -anchorEdgeMult * face
		}
	}
	return -anchorInteriorMult * face
}

// roughness sums absolute rank differences over occupied orthogonal
// neighbor pairs.
func roughness(ranks *[16]int) float64 {
	total := 0
	for r := 0; r < 4; r++ {
		for c := 0; c < 3; c++ {
			a, b := ranks[4*r+c], ranks[4*r+c+1]
			if a != 0 && b != 0 {
				total += abs(a - b)
			}
		}
	}
	for c := 0; c < 4; c++ {
		for r := 0; r < 3; r++ {
			a, b := ranks[4*r+c], ranks[4*(r+1)+c]
			if a != 0 && b != 0 {
				total += abs(a - b)
			}
		}
	}
	return float64(total)
}

// monotonicity credits each row and column with its longer ordered run
// direction: the count of non-increasing or non-decreasing adjacent
// pairs, whichever is larger.
func monotonicity(ranks *[16]int) float64 {
	total := 0
	for r := 0; r < 4; r++ {
		ni, nd := 0, 0
		for c := 0; c < 3; c++ {
			a, b := ranks[4*r+c], ranks[4*r+c+1]
			if a >= b {
				ni++
			}
			if a <= b {
				nd++
			}
		}
		total += max(ni, nd)
	}
	for c := 0; c < 4; c++ {
		ni, nd := 0, 0
		for r := 0; r < 3; r++ {
			a, b := ranks[4*r+c], ranks[4*(r+1)+c]
			if a >= b {
				ni++
			}
			if a <= b {
				nd++
			}
		}
		total += max(ni, nd)
	}
	return float64(total)
}

// mergePotential sums the rank of every equal orthogonal pair, counting
// each pair once through its right and down neighbors.
func mergePotential(ranks *[16]int) float64 {
	total := 0
	for i, v := range ranks {
		if v == 0 {
			continue
		}
		r, c := i/4, i%4
		if c < 3 && ranks[i+1] == v {
			total += v
		}
		if r < 3 && ranks[i+4] == v {
			total += v
		}
	}
	return float64(total)
}

// scatterMass sums the rank of equal high-rank pairs that sit apart on
// the board. Split big tiles are expensive to reunite.
func (se *SnakeEvaluator) scatterMass(ranks *[16]int) float64 {
	total := 0
	for i := 0; i < 16; i++ {
		v := ranks[i]
		if v < se.w.ScatterMinRank || v == 0 {
			continue
		}
		for j := i + 1; j < 16; j++ {
			if ranks[j] == v && !adjacentCells(i, j) {
				total += v
			}
		}
	}
	return float64(total)
}

// chainMass rewards a contiguous strictly descending run leading away
// from a corner-anchored maximum tile. The run's tail ranks are summed;
// branches are searched exhaustively and the best one wins.
func (se *SnakeEvaluator) chainMass(ranks *[16]int) float64 {
	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	if maxRank == 0 {
		return 0
	}
	best := 0
	for _, i := range cornerCells {
		if ranks[i] == maxRank {
			if v := descend(ranks, i, maxRank); v > best {
				best = v
			}
		}
	}
	return float64(best)
}

// descend returns the largest total of tail ranks reachable by stepping
// to an orthogonal neighbor of exactly one rank lower. Ranks strictly
// decrease along a chain, so no cell repeats.
func descend(ranks *[16]int, cell, rank int) int {
	if rank <= 1 {
		return 0
	}
	best := 0
	for _, nb := range neighborCells[cell] {
		if ranks[nb] == rank-1 {
			if v := rank - 1 + descend(ranks, nb, rank-1); v > best {
				best = v
			}
		}
	}
	return best
}

func orientations(base [4][4]float64) [8][16]float64 {
	var out [8][16]float64
	m := base
	for i := 0; i < 4; i++ {
		out[2*i] = flatten(m)
		out[2*i+1] = flatten(mirror(m))
		m = rotate(m)
	}
	return out
}

func rotate(m [4][4]float64) [4][4]float64 {
	var o [4][4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			o[r][c] = m[3-c][r]
		}
	}
	return o
}

func mirror(m [4][4]float64) [4][4]float64 {
	var o [4][4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			o[r][c] = m[r][3-c]
		}
	}
	return o
}

func flatten(m [4][4]float64) [16]float64 {
	var f [16]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			f[4*r+c] = m[r][c]
		}
	}
	return f
}

func unpackRanks(b board.Board) [16]int {
	var ranks [16]int
	x := uint64(b)
	for i := 0; i < 16; i++ {
		ranks[i] = int(x & 0xF)
		x >>= 4
	}
	return ranks
}

func onEdge(i int) bool {
	r, c := i/4, i%4
	return r == 0 || r == 3 || c == 0 || c == 3
}

func adjacentCells(i, j int) bool {
	ri, ci := i/4, i%4
	rj, cj := j/4, j%4
	return (ri == rj && abs(ci-cj) == 1) || (ci == cj && abs(ri-rj) == 1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
