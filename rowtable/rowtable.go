// Package rowtable precomputes every 16-bit row's slide results, merge
// scores, and static evaluation terms. A whole-board move or evaluation
// then reduces to four table lookups per axis.
package rowtable

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// NumRows is the size of each table, one entry per packed row value.
const NumRows = 1 << 16

// Row heuristic weights. The heuristic is a reward for open, mergeable,
// monotone rows with small tile mass, offset so that losing positions
// score near zero at the board level.
const (
	lostPenalty        = 200000.0
	emptyWeight        = 270.0
	mergesWeight       = 700.0
	monotonicityWeight = 47.0
	sumWeight          = 11.0
	sumPower           = 3.5
)

// Tables holds the four row tables. Build once via Get; entries are
// immutable afterwards and safe to share across goroutines.
type Tables struct {
	left  [NumRows]uint16
	right [NumRows]uint16
	score [NumRows]float64
	heur  [NumRows]float64
}

var (
	buildOnce sync.Once
	shared    *Tables
)

// Get returns the process-wide table set, building it on first use.
// Every caller receives the same pointer.
func Get() *Tables {
	buildOnce.Do(func() {
		start := time.Now()
		shared = build()
		log.Debug().Dur("elapsed", time.Since(start)).Msg("row-tables-built")
	})
	return shared
}

// SlideLeft returns the row after sliding and merging toward column 0.
func (t *Tables) SlideLeft(row uint16) uint16 { return t.left[row] }

// SlideRight returns the row after sliding and merging toward column 3.
func (t *Tables) SlideRight(row uint16) uint16 { return t.right[row] }

// ScoreLeft returns the points earned by sliding the row left: the sum
// of the face values of all tiles created by merges.
func (t *Tables) ScoreLeft(row uint16) float64 { return t.score[row] }

// ScoreRight returns the points earned by sliding the row right.
func (t *Tables) ScoreRight(row uint16) float64 { return t.score[Reverse(row)] }

// Heuristic returns the static evaluation of a single row.
func (t *Tables) Heuristic(row uint16) float64 { return t.heur[row] }

// Reverse mirrors a packed row end to end.
func Reverse(row uint16) uint16 {
	return row>>12 | row>>4&0x00F0 | row<<4&0x0F00 | row<<12
}

func build() *Tables {
	t := &Tables{}
	for rv := 0; rv < NumRows; rv++ {
		row := uint16(rv)
		line := unpack(row)
		t.heur[rv] = heuristic(line)
		moved, score := slideLeft(line)
		t.left[rv] = pack(moved)
		t.score[rv] = score
		// Right is left seen in a mirror. Reverse is a bijection, so
		// this fills every right entry over the full loop.
		t.right[Reverse(row)] = Reverse(pack(moved))
	}
	return t
}

func unpack(row uint16) [4]int {
	return [4]int{
		int(row & 0xF),
		int(row >> 4 & 0xF),
		int(row >> 8 & 0xF),
		int(row >> 12 & 0xF),
	}
}

func pack(line [4]int) uint16 {
	return uint16(line[0] | line[1]<<4 | line[2]<<8 | line[3]<<12)
}

// slideLeft compacts the row toward column 0 and merges equal adjacent
// pairs once per pass, left pair first. A merged tile's rank caps at 15
// but its score contribution does not.
func slideLeft(line [4]int) ([4]int, float64) {
	var compact [4]int
	n := 0
	for _, r := range line {
		if r != 0 {
			compact[n] = r
			n++
		}
	}
	var out [4]int
	score := 0.0
	o := 0
	for i := 0; i < n; i++ {
		r := compact[i]
		if i+1 < n && compact[i+1] == r {
			score += float64(int(1) << uint(r+1))
			merged := r + 1
			if merged > 15 {
				merged = 15
			}
			out[o] = merged
			i++
		} else {
			out[o] = r
		}
		o++
	}
	return out, score
}

func heuristic(line [4]int) float64 {
	sum := 0.0
	empty := 0
	merges := 0
	// Runs of equal ranks count as potential merges even across empty
	// cells, since a slide can close the gap.
	prev, counter := 0, 0
	for _, rank := range line {
		sum += math.Pow(float64(rank), sumPower)
		if rank == 0 {
			empty++
			continue
		}
		if prev == rank {
			counter++
		} else if counter > 0 {
			merges += 1 + counter
			counter = 0
		}
		prev = rank
	}
	if counter > 0 {
		merges += 1 + counter
	}

	monoLeft, monoRight := 0.0, 0.0
	for i := 1; i < 4; i++ {
		a, b := pow4(line[i-1]), pow4(line[i])
		if a > b {
			monoLeft += a - b
		} else {
			monoRight += b - a
		}
	}
	mono := math.Min(monoLeft, monoRight)

	return lostPenalty +
		emptyWeight*float64(empty) +
		mergesWeight*float64(merges) -
		monotonicityWeight*mono -
		sumWeight*sum
}

func pow4(rank int) float64 {
	f := float64(rank)
	return f * f * f * f
}
