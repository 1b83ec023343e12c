package board

import (
	"strings"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"
)

func randomBoard() Board {
	var b Board
	for i := 0; i < 16; i++ {
		b |= Board(frand.Intn(16)) << (4 * i)
	}
	return b
}

func naiveTranspose(b Board) Board {
	var t Board
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t = t.SetRank(c, r, b.Rank(r, c))
		}
	}
	return t
}

func TestFromFaces(t *testing.T) {
	is := is.New(t)
	b := FromFaces([16]uint16{2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768, 0})
	for i := 0; i < 15; i++ {
		is.Equal(b.Rank(i/4, i%4), i+1)
	}
	is.Equal(b.Rank(3, 3), 0)
	is.Equal(b.Faces(), [16]uint16{2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768, 0})
}

func TestFromFacesTruncation(t *testing.T) {
	is := is.New(t)
	// Non-powers of two truncate down; a face of 1 truncates to empty.
	b := FromFaces([16]uint16{3, 1, 5, 1000})
	is.Equal(b.Rank(0, 0), 1)
	is.Equal(b.Rank(0, 1), 0)
	is.Equal(b.Rank(0, 2), 2)
	is.Equal(b.Rank(0, 3), 9)
}

func TestPackingLayout(t *testing.T) {
	is := is.New(t)
	b := FromRanks([16]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0})
	// Row 0 occupies the low 16 bits, leftmost cell in the low nibble.
	is.Equal(uint64(b)&0xF, uint64(1))
	is.Equal(b.Row(0), uint16(0x4321))
	is.Equal(b.Row(1), uint16(0x8765))
	is.Equal(b.Row(3), uint16(0x0FED))
}

func TestSetRank(t *testing.T) {
	is := is.New(t)
	var b Board
	b = b.SetRank(2, 1, 7)
	is.Equal(b.Rank(2, 1), 7)
	b = b.SetRank(2, 1, 3)
	is.Equal(b.Rank(2, 1), 3)
	is.Equal(b.SetRank(2, 1, 0), Board(0))
}

func TestTransposeMatchesNaive(t *testing.T) {
	is := is.New(t)
	is.Equal(Board(0).Transpose(), Board(0))
	b := FromRanks([16]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0})
	is.Equal(b.Transpose(), naiveTranspose(b))
	for i := 0; i < 200; i++ {
		rb := randomBoard()
		is.Equal(rb.Transpose(), naiveTranspose(rb))
	}
}

func TestTransposeInvolution(t *testing.T) {
	is := is.New(t)
	for i := 0; i < 50; i++ {
		b := randomBoard()
		is.Equal(b.Transpose().Transpose(), b)
	}
}

func TestCountEmpty(t *testing.T) {
	is := is.New(t)
	is.Equal(Board(0).CountEmpty(), 16)
	full := FromRanks([16]int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	is.Equal(full.CountEmpty(), 0)
	is.Equal(Board(0).PlaceAt(5, 1).CountEmpty(), 15)
	for i := 0; i < 200; i++ {
		b := randomBoard()
		n := 0
		for c := 0; c < 16; c++ {
			if b.Rank(c/4, c%4) == 0 {
				n++
			}
		}
		is.Equal(b.CountEmpty(), n)
	}
}

func TestDistinctRanks(t *testing.T) {
	is := is.New(t)
	is.Equal(Board(0).DistinctRanks(), 0)
	b := FromRanks([16]int{1, 1, 2, 2, 3, 0, 0, 0})
	is.Equal(b.DistinctRanks(), 3)
	all := FromRanks([16]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 15})
	is.Equal(all.DistinctRanks(), 15)
}

func TestMaxTile(t *testing.T) {
	is := is.New(t)
	b := FromRanks([16]int{0, 3, 0, 0, 5, 0, 0, 0, 0, 0, 0, 5, 0, 0, 0, 0})
	rank, row, col := b.MaxTile()
	is.Equal(rank, 5)
	// The first occurrence in row-major order wins.
	is.Equal(row, 1)
	is.Equal(col, 0)
}

func TestString(t *testing.T) {
	is := is.New(t)
	s := FromRanks([16]int{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 15}).String()
	is.True(strings.Contains(s, "    2 "))
	is.True(strings.Contains(s, "32768"))
}
