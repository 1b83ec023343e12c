// Package tpn reads and writes text position notation, a compact
// single-line description of a board. The four rows are separated by
// slashes; within a row a tile of rank n is the nth lowercase letter
// (a=2, b=4, ... o=32768) and a digit is a run of that many empty
// cells. Optional opcodes follow the board after a space, separated by
// semicolons, each an opcode name and its value.
//
// For example "o3/4/4/3a d 6;gid opener" is a 32768 tile in the top
// left corner, a 2 in the bottom right, a suggested search depth of 6,
// and a position id.
package tpn

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/twenty48/board"
)

// Known opcode names.
const (
	OpDepth     = "d"
	OpEvaluator = "ev"
	OpGameID    = "gid"
)

// Position is a parsed notation string: the board plus any opcodes
// that followed it.
type Position struct {
	Board   board.Board
	Opcodes map[string]string
}

// Parse returns the position described by a notation string.
func Parse(s string) (*Position, error) {
	fields := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if fields[0] == "" {
		return nil, errors.New("empty position string")
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != 4 {
		return nil, fmt.Errorf("expected 4 rows, got %d", len(rows))
	}
	var b board.Board
	for r, row := range rows {
		ranks, err := rowToRanks(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		for c, rank := range ranks {
			b = b.SetRank(r, c, rank)
		}
	}

	opcodes := map[string]string{}
	if len(fields) == 2 {
		for _, op := range strings.Split(fields[1], ";") {
			op = strings.TrimSpace(op)
			if op == "" {
				continue
			}
			opWithParams := strings.SplitN(op, " ", 2)
			if len(opWithParams) != 2 {
				return nil, fmt.Errorf("opcode %q needs a value", opWithParams[0])
			}
			opcodes[opWithParams[0]] = opWithParams[1]
		}
	}
	return &Position{Board: b, Opcodes: opcodes}, nil
}

// Depth returns the value of the depth opcode, or fallback when the
// opcode is absent.
func (p *Position) Depth(fallback int) (int, error) {
	v, ok := p.Opcodes[OpDepth]
	if !ok {
		return fallback, nil
	}
	d, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad depth opcode %q: %w", v, err)
	}
	return d, nil
}

func rowToRanks(row string) ([4]int, error) {
	var ranks [4]int
	n := 0
	for _, rn := range row {
		switch {
		case rn >= 'a' && rn <= 'o':
			if n >= 4 {
				return ranks, errors.New("row longer than 4 cells")
			}
			ranks[n] = int(rn-'a') + 1
			n++
		case rn >= '1' && rn <= '4':
			// A run of empties. Cells default to empty, so just skip
			// ahead.
			n += int(rn - '0')
			if n > 4 {
				return ranks, errors.New("row longer than 4 cells")
			}
		default:
			return ranks, fmt.Errorf("unexpected character %q", rn)
		}
	}
	if n != 4 {
		return ranks, fmt.Errorf("row has %d cells, need 4", n)
	}
	return ranks, nil
}

// Emit renders a board in notation form, without opcodes.
func Emit(b board.Board) string {
	var sb strings.Builder
	for r := 0; r < 4; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		run := 0
		for c := 0; c < 4; c++ {
			rank := b.Rank(r, c)
			if rank == 0 {
				run++
				continue
			}
			if run > 0 {
				sb.WriteByte(byte('0' + run))
				run = 0
			}
			sb.WriteByte(byte('a' + rank - 1))
		}
		if run > 0 {
			sb.WriteByte(byte('0' + run))
		}
	}
	return sb.String()
}

func (p *Position) String() string {
	out := Emit(p.Board)
	if len(p.Opcodes) == 0 {
		return out
	}
	// Emit opcodes sorted so the output is stable.
	names := make([]string, 0, len(p.Opcodes))
	for name := range p.Opcodes {
		names = append(names, name)
	}
	sort.Strings(names)
	ops := lo.Map(names, func(name string, _ int) string {
		return name + " " + p.Opcodes[name]
	})
	return out + " " + strings.Join(ops, ";")
}
