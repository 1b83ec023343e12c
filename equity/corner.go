package equity

import (
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/rowtable"
)

// CornerEvaluator sums the precomputed row heuristic over the four rows
// and four columns, then adds a placement term that rewards keeping a
// large maximum tile in a corner. Everything except the placement term
// is table lookups.
type CornerEvaluator struct {
	tbl *rowtable.Tables
	w   config.CornerWeights
}

func NewCornerEvaluator(cfg *config.Config) *CornerEvaluator {
	return &CornerEvaluator{tbl: rowtable.Get(), w: cfg.CornerWeights()}
}

func (ce *CornerEvaluator) Evaluate(b board.Board) float64 {
	tr := b.Transpose()
	total := 0.0
	for r := 0; r < 4; r++ {
		total += ce.tbl.Heuristic(b.Row(r)) + ce.tbl.Heuristic(tr.Row(r))
	}
	return total + ce.placement(b)
}

// placement scores the first maximal tile in row-major scan order once
// it reaches the anchor rank. Corners are rewarded; edges and the
// interior are penalized harder the larger the tile.
func (ce *CornerEvaluator) placement(b board.Board) float64 {
	rank, row, col := b.MaxTile()
	if rank < ce.w.AnchorMinRank {
		return 0
	}
	sq := float64(rank * rank)
	edgeRow := row == 0 || row == 3
	edgeCol := col == 0 || col == 3
	switch {
	case edgeRow && edgeCol:
		return sq * ce.w.CornerBonus
	case edgeRow || edgeCol:
		return -sq * ce.w.EdgePenalty
	default:
		return -sq * ce.w.InteriorPenalty
	}
}

func (ce *CornerEvaluator) Terms(b board.Board) []Term {
	tr := b.Transpose()
	rows, cols := 0.0, 0.0
	for r := 0; r < 4; r++ {
		rows += ce.tbl.Heuristic(b.Row(r))
		cols += ce.tbl.Heuristic(tr.Row(r))
	}
	return []Term{
		{"rows", rows},
		{"columns", cols},
		{"placement", ce.placement(b)},
	}
}

func (ce *CornerEvaluator) Type() string { return config.EvaluatorCorner }
