// Package board implements the packed 4x4 position representation. A
// position fits in a single uint64; each cell is a 4-bit rank, the base-2
// logarithm of the tile's face value (0 means empty). Cells are laid out
// row-major with row 0 in the lowest 16 bits and the leftmost cell of a
// row in that row's lowest nibble.
package board

import (
	"fmt"
	"math"
	"strings"
)

// Board is a whole position. The zero value is the empty board, and the
// numeric value doubles as the position's identity for caching.
type Board uint64

const (
	// MaxRank is the largest rank a cell can hold.
	MaxRank = 15
	// RowMask extracts one row from the packed representation.
	RowMask = 0xFFFF
)

// FromFaces packs an array of face values, one per cell in row-major
// order, into a Board. Faces are converted to ranks by truncated log2;
// zero stays empty. Face values above 32768 wrap into the 4-bit rank.
func FromFaces(faces [16]uint16) Board {
	var b Board
	for i, f := range faces {
		if f == 0 {
			continue
		}
		rank := uint64(math.Log2(float64(f))) & 0xF
		b |= Board(rank << (4 * i))
	}
	return b
}

// FromRanks packs an array of ranks, one per cell in row-major order.
func FromRanks(ranks [16]int) Board {
	var b Board
	for i, r := range ranks {
		b |= Board(uint64(r)&0xF) << (4 * i)
	}
	return b
}

// Faces unpacks the board into face values in row-major order.
func (b Board) Faces() [16]uint16 {
	var faces [16]uint16
	for i := 0; i < 16; i++ {
		r := (b >> (4 * i)) & 0xF
		if r != 0 {
			faces[i] = 1 << r
		}
	}
	return faces
}

// Rank returns the rank of the cell at row r, column c.
func (b Board) Rank(r, c int) int {
	return int(b >> uint(16*r+4*c) & 0xF)
}

// SetRank returns a board with the cell at row r, column c replaced.
func (b Board) SetRank(r, c, rank int) Board {
	sh := uint(16*r + 4*c)
	return b&^(0xF<<sh) | Board(uint64(rank)&0xF)<<sh
}

// PlaceAt returns a board with rank written into the given cell index
// (0..15, row-major). The cell must be empty.
func (b Board) PlaceAt(cell, rank int) Board {
	return b | Board(rank)<<uint(4*cell)
}

// Row returns row r as a packed 16-bit value, leftmost cell in the low
// nibble.
func (b Board) Row(r int) uint16 {
	return uint16(b >> uint(16*r) & RowMask)
}

// Transpose mirrors the board across its main diagonal, exchanging rows
// and columns in six bitwise operations.
func (b Board) Transpose() Board {
	a1 := b & 0xF0F00F0FF0F00F0F
	a2 := b & 0x0000F0F00000F0F0
	a3 := b & 0x0F0F00000F0F0000
	a := a1 | a2<<12 | a3>>12
	b1 := a & 0xFF00FF0000FF00FF
	b2 := a & 0x00FF00FF00000000
	b3 := a & 0x00000000FF00FF00
	return b1 | b2>>24 | b3<<24
}

// CountEmpty returns the number of empty cells, 0 through 16.
func (b Board) CountEmpty() int {
	// One indicator bit per empty nibble, then two folds. The five-bit
	// final mask keeps the all-empty case from wrapping to zero.
	x := ^(uint64(b) | uint64(b)>>1 | uint64(b)>>2 | uint64(b)>>3) & 0x1111111111111111
	n := (x + x>>4 + x>>8 + x>>12) & 0x000F000F000F000F
	return int((n + n>>16 + n>>32 + n>>48) & 0x1F)
}

// DistinctRanks returns the number of distinct nonzero ranks present.
func (b Board) DistinctRanks() int {
	var seen uint16
	for x := uint64(b); x != 0; x >>= 4 {
		seen |= 1 << (x & 0xF)
	}
	seen &^= 1
	n := 0
	for ; seen != 0; seen &= seen - 1 {
		n++
	}
	return n
}

// MaxTile returns the highest rank on the board and the row and column
// of its first occurrence in row-major order. An empty board reports
// rank 0 at cell (0, 0).
func (b Board) MaxTile() (rank, row, col int) {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if v := b.Rank(r, c); v > rank {
				rank, row, col = v, r, c
			}
		}
	}
	return rank, row, col
}

// String renders the board as a bordered grid of face values.
func (b Board) String() string {
	var sb strings.Builder
	divider := "+------+------+------+------+\n"
	faces := b.Faces()
	for r := 0; r < 4; r++ {
		sb.WriteString(divider)
		for c := 0; c < 4; c++ {
			f := faces[4*r+c]
			if f == 0 {
				sb.WriteString("|      ")
			} else {
				fmt.Fprintf(&sb, "|%5d ", f)
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(divider)
	return sb.String()
}
