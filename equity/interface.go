package equity

import (
	"fmt"

	"github.com/domino14/twenty48/board"
	"github.com/domino14/twenty48/config"
)

// Evaluator scores a static position; higher is better for the mover.
// Implementations are immutable after construction and safe for
// concurrent use.
type Evaluator interface {
	Evaluate(b board.Board) float64
	Type() string
}

// Term is one named component of an evaluation.
type Term struct {
	Name  string
	Value float64
}

// TermScorer is implemented by evaluators that can break a score into
// named terms for diagnostics.
type TermScorer interface {
	Terms(b board.Board) []Term
}

// NewEvaluator builds the evaluator the config selects.
func NewEvaluator(cfg *config.Config) (Evaluator, error) {
	switch typ := cfg.GetString(config.KeyEvaluator); typ {
	case config.EvaluatorCorner:
		return NewCornerEvaluator(cfg), nil
	case config.EvaluatorSnake:
		return NewSnakeEvaluator(cfg), nil
	default:
		return nil, fmt.Errorf("unknown evaluator %v", typ)
	}
}
