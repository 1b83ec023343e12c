// Package movegen applies slides to whole boards through the row
// tables. Horizontal moves are four table lookups; vertical moves
// transpose, slide, and transpose back.
package movegen

import (
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/move"
	"github.com/domino14/twenty48/rowtable"
)

// Apply slides b in direction d. It returns the resulting board, the
// points earned by merges during the slide, and whether the board
// changed. A slide that changes nothing is not a legal move.
func Apply(t *rowtable.Tables, b board.Board, d move.Direction) (board.Board, float64, bool) {
	var nb board.Board
	var score float64
	switch d {
	case move.Up:
		tr := b.Transpose()
		for r := 0; r < 4; r++ {
			row := tr.Row(r)
			nb |= board.Board(t.SlideLeft(row)) << (16 * r)
			score += t.ScoreLeft(row)
		}
		nb = nb.Transpose()
	case move.Down:
		tr := b.Transpose()
		for r := 0; r < 4; r++ {
			row := tr.Row(r)
			nb |= board.Board(t.SlideRight(row)) << (16 * r)
			score += t.ScoreRight(row)
		}
		nb = nb.Transpose()
	case move.Left:
		for r := 0; r < 4; r++ {
			row := b.Row(r)
			nb |= board.Board(t.SlideLeft(row)) << (16 * r)
			score += t.ScoreLeft(row)
		}
	case move.Right:
		for r := 0; r < 4; r++ {
			row := b.Row(r)
			nb |= board.Board(t.SlideRight(row)) << (16 * r)
			score += t.ScoreRight(row)
		}
	}
	return nb, score, nb != b
}

// LegalMoves returns the directions that change b, in direction order.
func LegalMoves(t *rowtable.Tables, b board.Board) []move.Direction {
	var legal []move.Direction
	for _, d := range move.AllDirections {
		if _, _, changed := Apply(t, b, d); changed {
			legal = append(legal, d)
		}
	}
	return legal
}
