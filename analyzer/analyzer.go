// Package analyzer is the host-facing boundary of the engine. It
// converts between raw face-value buffers and packed boards, owns a
// solver configured from settings, and fans batch analysis out over
// worker goroutines.
package analyzer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
	"github.com/domino14/twenty48/equity"
	"github.com/domino14/twenty48/expectimax"
	"github.com/domino14/twenty48/move"
)

// Analyzer wraps one solver. Like the solver it is single-threaded;
// batch work builds one analyzer per worker.
type Analyzer struct {
	cfg    *config.Config
	ev     equity.Evaluator
	solver *expectimax.Solver
}

func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	ev, err := equity.NewEvaluator(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := expectimax.ParsePolicy(cfg.GetString(config.KeyPruning))
	if err != nil {
		return nil, err
	}
	solver := expectimax.NewSolver(ev)
	solver.SetPolicy(policy)
	solver.SetProbThreshold(cfg.GetFloat64(config.KeyProbThreshold))
	solver.SetMaxChanceCells(cfg.GetInt(config.KeyMaxChanceCells))
	ceiling := cfg.GetInt(config.KeyCacheCeiling)
	if frac := cfg.GetFloat64(config.KeyCacheMemFraction); frac > 0 {
		ceiling = expectimax.MemorySizedCeiling(frac)
	}
	solver.SetCacheCeiling(ceiling)

	log.Debug().Str("evaluator", ev.Type()).
		Str("pruning", policy.String()).
		Str("weight-fingerprint", fmt.Sprintf("%016x", cfg.WeightFingerprint())).
		Msg("analyzer-created")
	return &Analyzer{cfg: cfg, ev: ev, solver: solver}, nil
}

// RankMoves ranks the position described by faces, writing up to four
// results into scores and dirs, best first, and returning how many
// slots were written. The caller owns the buffers; slots past the
// returned count are left untouched. The call is synchronous and
// identical inputs produce identical outputs.
func (a *Analyzer) RankMoves(faces *[16]uint16, depth int, scores *[4]float64, dirs *[4]uint8) int {
	ranked := a.solver.RankedMoves(board.FromFaces(*faces), depth)
	for i, rm := range ranked {
		scores[i] = rm.Score
		dirs[i] = uint8(rm.Dir)
	}
	return len(ranked)
}

// RankBoard ranks a packed board for in-process callers.
func (a *Analyzer) RankBoard(b board.Board, depth int) []move.RankedMove {
	return a.solver.RankedMoves(b, depth)
}

// Evaluator exposes the active evaluator for diagnostics.
func (a *Analyzer) Evaluator() equity.Evaluator { return a.ev }

// Stats reports the solver's counters for its most recent search.
func (a *Analyzer) Stats() expectimax.SolverStats { return a.solver.Stats() }

// AnalyzePositions ranks every board at the same depth, fanned out
// over workers goroutines. Each worker builds its own analyzer, so
// caches are never shared; the precomputed row tables are the only
// shared state. Canceling ctx stops workers between positions; a
// search already underway runs to completion.
func AnalyzePositions(ctx context.Context, cfg *config.Config, boards []board.Board,
	depth, workers int) ([][]move.RankedMove, error) {

	if workers <= 0 {
		workers = 1
	}
	results := make([][]move.RankedMove, len(boards))
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			an, err := NewAnalyzer(cfg)
			if err != nil {
				return err
			}
			for i := w; i < len(boards); i += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				results[i] = an.RankBoard(boards[i], depth)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
