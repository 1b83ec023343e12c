package tpn

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/twenty48/board"
)

func TestParse(t *testing.T) {
	is := is.New(t)

	p, err := Parse("a3/4/4/4")
	is.NoErr(err)
	is.Equal(p.Board.Rank(0, 0), 1)
	is.Equal(p.Board.CountEmpty(), 15)

	p, err = Parse("o3/4/4/3a")
	is.NoErr(err)
	is.Equal(p.Board.Rank(0, 0), 15)
	is.Equal(p.Board.Rank(3, 3), 1)

	p, err = Parse("abcd/4/4/4")
	is.NoErr(err)
	is.Equal(p.Board.Row(0), uint16(0x4321))
}

func TestParseOpcodes(t *testing.T) {
	is := is.New(t)

	p, err := Parse("a3/4/4/4 d 6;gid opener")
	is.NoErr(err)
	is.Equal(p.Opcodes[OpDepth], "6")
	is.Equal(p.Opcodes[OpGameID], "opener")

	d, err := p.Depth(3)
	is.NoErr(err)
	is.Equal(d, 6)

	d, err = (&Position{Opcodes: map[string]string{}}).Depth(3)
	is.NoErr(err)
	is.Equal(d, 3)
}

func TestParseErrors(t *testing.T) {
	is := is.New(t)
	for _, bad := range []string{
		"",            // no board
		"a3/4/4",      // three rows
		"a3/4/4/5",    // run overflows the row
		"aaaaa/4/4/4", // five cells
		"a2/4/4/4",    // short row
		"x3/4/4/4",    // not a rank letter
		"a3/4/4/4 d",  // opcode with no value
	} {
		_, err := Parse(bad)
		if err == nil {
			t.Errorf("expected error parsing %q", bad)
		}
	}
	is.True(true)
}

func TestRoundTrip(t *testing.T) {
	is := is.New(t)
	for _, notation := range []string{
		"4/4/4/4",
		"a3/4/4/4",
		"o3/4/4/3a",
		"abcd/dcba/abcd/dcba",
		"1a2/2b1/3c/d3",
	} {
		p, err := Parse(notation)
		is.NoErr(err)
		is.Equal(Emit(p.Board), notation)
	}
}

func TestEmitMatchesBoard(t *testing.T) {
	is := is.New(t)
	b := board.FromRanks([16]int{1, 0, 0, 2, 0, 3, 4, 0, 0, 0, 0, 0, 5, 0, 0, 6})
	p, err := Parse(Emit(b))
	is.NoErr(err)
	is.Equal(p.Board, b)
}

func TestStringWithOpcodes(t *testing.T) {
	is := is.New(t)
	p := &Position{
		Board:   board.FromRanks([16]int{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}),
		Opcodes: map[string]string{"gid": "opener", "d": "6"},
	}
	is.Equal(p.String(), "a3/4/4/4 d 6;gid opener")
}
