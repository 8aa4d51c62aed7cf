package solver

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Result is the outcome of a full Picard solve.
type Result struct {
	Session   Session       `json:"session"`
	Converged bool          `json:"converged"`
	Verdict   string        `json:"verdict"`
	History   []float64     `json:"history"`
	Elapsed   time.Duration `json:"elapsed"`
}

type solveOptions struct {
	observer           func(Session)
	divergencePatience int
}

// SolveOption customizes Solve.
type SolveOption func(*solveOptions)

// WithObserver registers fn to receive every session produced by the loop,
// in order.
func WithObserver(fn func(Session)) SolveOption {
	return func(o *solveOptions) {
		o.observer = fn
	}
}

// WithDivergencePatience abandons the iteration after n consecutive steps
// with a growing distance.
func WithDivergencePatience(n int) SolveOption {
	return func(o *solveOptions) {
		o.divergencePatience = n
	}
}

// Solve iterates from the seed until successive coefficient vectors are
// within Threshold of each other.
//
// If the budget runs out, the distance keeps growing, or a step produces
// non-finite values, Solve returns ErrNonConvergence together with the
// last good result. Cancelling ctx stops the loop between steps.
func (s *Solver) Solve(ctx context.Context, f RHS, opts ...SolveOption) (*Result, error) {
	var o solveOptions
	for _, opt := range opts {
		opt(&o)
	}

	if f == nil {
		return nil, invalid("right-hand side is nil")
	}
	if _, err := s.Rule(); err != nil {
		return nil, fmt.Errorf("failed to build quadrature rule: %w", err)
	}

	tracker := NewConvergenceTracker(ConvergenceConfig{
		Threshold:          s.cfg.Threshold,
		MaxIterations:      s.cfg.maxIterations(),
		DivergencePatience: o.divergencePatience,
	})

	start := time.Now()
	sess := s.Reset()
	result := func(v Verdict) *Result {
		return &Result{
			Session:   sess,
			Converged: v == Converged,
			Verdict:   v.String(),
			History:   tracker.History(),
			Elapsed:   time.Since(start),
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return result(Continue), err
		}

		next, err := s.Advance(sess, f)
		if err != nil {
			return result(Diverged), err
		}
		sess = next

		if o.observer != nil {
			o.observer(sess.Clone())
		}

		switch v := tracker.Update(sess.Distance); v {
		case Converged:
			slog.Debug("Solve converged",
				"iterations", sess.Iteration,
				"distance", sess.Distance,
				"elapsed", time.Since(start),
			)
			return result(v), nil
		case Exhausted, Diverged:
			slog.Debug("Solve did not converge",
				"verdict", v.String(),
				"iterations", sess.Iteration,
				"distance", sess.Distance,
				"best", tracker.Best(),
			)
			return result(v), fmt.Errorf("%w: %s after %d iterations, last distance %g (threshold %g)",
				ErrNonConvergence, v, sess.Iteration, sess.Distance, s.cfg.Threshold)
		}
	}
}
