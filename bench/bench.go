// Package bench measures search behavior over randomized positions:
// per-search latency, node counts, and cache effectiveness for the
// configured evaluator and pruning policy. Positions come from random
// playouts, so the sample leans toward the boards a real game visits
// rather than uniform nibble noise.
package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/domino14/twenty48/analyzer"
	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/movegen"
	"github.com/domino14/twenty48/rowtable"
	"github.com/domino14/twenty48/stats"
)

// Options controls a benchmark run.
type Options struct {
	// Positions is how many random positions to search.
	Positions int
	// Depth is the requested search depth for every position.
	Depth int
	// Plies is the random-playout length used to generate each
	// position. Longer playouts produce fuller, later-game boards.
	Plies int
	// HistBins is the latency histogram bin count; 0 disables the
	// histogram.
	HistBins int
}

// DefaultOptions benchmarks mid-game boards at the config's depth.
func DefaultOptions(cfg *config.Config) Options {
	return Options{
		Positions: 100,
		Depth:     cfg.GetInt(config.KeyDepth),
		Plies:     120,
		HistBins:  10,
	}
}

// Report summarizes a benchmark run. The fingerprint ties the numbers
// to the exact evaluator weights and search options that produced
// them.
type Report struct {
	Evaluator   string  `yaml:"evaluator"`
	Pruning     string  `yaml:"pruning"`
	Fingerprint string  `yaml:"fingerprint"`
	Depth       int     `yaml:"depth"`
	Positions   int     `yaml:"positions"`
	Plies       int     `yaml:"plies"`
	MeanMs      float64 `yaml:"mean_ms"`
	StdevMs     float64 `yaml:"stdev_ms"`
	CI95Ms      float64 `yaml:"ci95_ms"`
	MinMs       float64 `yaml:"min_ms"`
	MaxMs       float64 `yaml:"max_ms"`
	TotalMs     float64 `yaml:"total_ms"`
	MeanNodes   float64 `yaml:"mean_nodes"`
	MeanEvals   float64 `yaml:"mean_evals"`
	CacheHitPct float64 `yaml:"cache_hit_pct"`
	MeanLegal   float64 `yaml:"mean_legal_moves"`
}

// WriteYAML writes the report as a yaml document.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// Run searches opts.Positions random positions and returns the
// aggregate report. When w is non-nil a latency histogram is printed
// to it.
func Run(cfg *config.Config, opts Options, w io.Writer) (*Report, error) {
	an, err := analyzer.NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Positions <= 0 {
		opts.Positions = 1
	}

	var elapsed, nodes, evals, hitRate, legal stats.Statistic
	latencies := make([]float64, 0, opts.Positions)
	start := time.Now()
	for i := 0; i < opts.Positions; i++ {
		b := RandomPosition(opts.Plies)
		t0 := time.Now()
		ranked := an.RankBoard(b, opts.Depth)
		ms := float64(time.Since(t0).Microseconds()) / 1000.0

		st := an.Stats()
		elapsed.Push(ms)
		latencies = append(latencies, ms)
		nodes.Push(float64(st.Nodes))
		evals.Push(float64(st.Evals))
		if st.Cache.Lookups > 0 {
			hitRate.Push(float64(st.Cache.Hits) / float64(st.Cache.Lookups))
		}
		legal.Push(float64(len(ranked)))
	}
	total := time.Since(start)

	if w != nil && opts.HistBins > 0 {
		hist := histogram.Hist(opts.HistBins, latencies)
		if err := histogram.Fprint(w, hist, histogram.Linear(40)); err != nil {
			return nil, err
		}
	}

	report := &Report{
		Evaluator:   cfg.GetString(config.KeyEvaluator),
		Pruning:     cfg.GetString(config.KeyPruning),
		Fingerprint: fmt.Sprintf("%016x", cfg.WeightFingerprint()),
		Depth:       opts.Depth,
		Positions:   opts.Positions,
		Plies:       opts.Plies,
		MeanMs:      elapsed.Mean(),
		StdevMs:     elapsed.Stdev(),
		CI95Ms:      stats.ZVal(95) * elapsed.StandardError(),
		MinMs:       elapsed.Min(),
		MaxMs:       elapsed.Max(),
		TotalMs:     float64(total.Microseconds()) / 1000.0,
		MeanNodes:   nodes.Mean(),
		MeanEvals:   evals.Mean(),
		CacheHitPct: hitRate.Mean() * 100,
		MeanLegal:   legal.Mean(),
	}
	log.Debug().Int("positions", opts.Positions).
		Int("depth", opts.Depth).
		Float64("mean-ms", report.MeanMs).
		Float64("cache-hit-pct", report.CacheHitPct).
		Msg("bench-run-done")
	return report, nil
}

// RandomPosition plays out up to plies random legal moves from a fresh
// two-tile board and returns where it ends up, stopping early if the
// playout gets stuck.
func RandomPosition(plies int) board.Board {
	tbl := rowtable.Get()
	b, _ := Spawn(0)
	b, _ = Spawn(b)
	for i := 0; i < plies; i++ {
		legal := movegen.LegalMoves(tbl, b)
		if len(legal) == 0 {
			break
		}
		d := legal[frand.Intn(len(legal))]
		b, _, _ = movegen.Apply(tbl, b, d)
		var ok bool
		if b, ok = Spawn(b); !ok {
			break
		}
	}
	return b
}

// Spawn adds a random tile to a random empty cell, rank 1 with
// probability 0.9 and rank 2 otherwise, matching the game's own drop
// rule. It reports false if the board is full.
func Spawn(b board.Board) (board.Board, bool) {
	empties := lo.Filter(lo.Range(16), func(cell int, _ int) bool {
		return b>>(4*cell)&0xF == 0
	})
	if len(empties) == 0 {
		return b, false
	}
	rank := 1
	if frand.Float64() < 0.1 {
		rank = 2
	}
	return b.PlaceAt(empties[frand.Intn(len(empties))], rank), true
}
