package solver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/hakniyev/cauchysolver/internal/laguerre"
	"github.com/hakniyev/cauchysolver/internal/opt"
)

// TuneConfig bounds the search for substitution parameters.
type TuneConfig struct {
	// Lower and Upper bound both A and B.
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`

	// Density is the residual grid size.
	Density int `json:"density"`

	// DivergencePatience abandons candidates whose distance keeps growing.
	DivergencePatience int `json:"divergencePatience"`
}

// DefaultTuneConfig searches A and B in [0.25, 4].
func DefaultTuneConfig() TuneConfig {
	return TuneConfig{
		Lower:              0.25,
		Upper:              4,
		Density:            200,
		DivergencePatience: 5,
	}
}

// TuneResult is the best (A, B) pair found by Tune.
type TuneResult struct {
	A           float64 `json:"a"`
	B           float64 `json:"b"`
	Residual    float64 `json:"residual"`
	Evaluations int64   `json:"evaluations"`
}

// Tune searches the substitution parameters (A, B) that minimize the
// residual of eq, holding the rest of base fixed. Candidates that fail to
// converge score +Inf. All candidates share one cache, so the quadrature
// rule is computed once.
func Tune(ctx context.Context, base Config, eq Equation, optimizer opt.Optimizer, tc TuneConfig) (*TuneResult, error) {
	if !(tc.Lower > 0) || !(tc.Lower < tc.Upper) || math.IsInf(tc.Upper, 0) {
		return nil, invalid("tuning interval [%g, %g] must be positive and non-empty", tc.Lower, tc.Upper)
	}
	if tc.Density < 1 {
		return nil, invalid("density must be at least 1, got %d", tc.Density)
	}
	if eq.RHS == nil {
		return nil, invalid("equation %q has no right-hand side", eq.Name)
	}

	base.Y0 = eq.Y0
	if err := base.Validate(); err != nil {
		return nil, err
	}

	cache := laguerre.NewCache()
	var evaluations atomic.Int64

	objective := func(p []float64) float64 {
		evaluations.Add(1)
		if ctx.Err() != nil {
			return math.Inf(1)
		}

		cfg := base
		cfg.A, cfg.B = p[0], p[1]
		s, err := Configure(cfg, WithCache(cache))
		if err != nil {
			return math.Inf(1)
		}

		res, err := s.Solve(ctx, eq.RHS, WithDivergencePatience(tc.DivergencePatience))
		if err != nil {
			return math.Inf(1)
		}

		r, err := s.Residual(res.Session, eq.RHS, tc.Density)
		if err != nil || math.IsNaN(r) {
			return math.Inf(1)
		}
		return r
	}

	lower := []float64{tc.Lower, tc.Lower}
	upper := []float64{tc.Upper, tc.Upper}
	best, cost, err := optimizer.Run(objective, lower, upper, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to tune %s: %w", eq.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if math.IsInf(cost, 1) {
		return nil, fmt.Errorf("%w: no candidate in [%g, %g] converged for %s", ErrNonConvergence, tc.Lower, tc.Upper, eq.Name)
	}

	slog.Info("Tuning complete",
		"equation", eq.Name,
		"a", best[0],
		"b", best[1],
		"residual", cost,
		"evaluations", evaluations.Load(),
	)

	return &TuneResult{
		A:           best[0],
		B:           best[1],
		Residual:    cost,
		Evaluations: evaluations.Load(),
	}, nil
}
