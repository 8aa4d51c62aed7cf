// Package solver solves nonlinear Cauchy problems
//
//	y'(x) = f(x, y),  y(0) = y0,  x in [0, 1)
//
// by the substitution x = 1 - e^{-A t}, a Sobolev-Laguerre expansion of the
// transformed solution, and Picard iteration on the expansion coefficients
// with Gauss-Laguerre quadrature.
package solver

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hakniyev/cauchysolver/internal/laguerre"
)

// RHS is the right-hand side f(x, y) of the equation.
type RHS func(x, y float64) float64

// Solver is a validated, immutable configuration together with the
// evaluator (and cache) used by every operation on it.
type Solver struct {
	cfg  Config
	eval *laguerre.Evaluator
}

// Option customizes Configure.
type Option func(*Solver)

// WithCache makes the solver use a shared cache instead of a private one.
func WithCache(cache *laguerre.Cache) Option {
	return func(s *Solver) {
		s.eval = laguerre.NewEvaluator(cache)
	}
}

// Configure validates cfg and returns a solver for it.
func Configure(cfg Config, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Solver{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.eval == nil {
		s.eval = laguerre.NewEvaluator(nil)
	}
	return s, nil
}

// Config returns the solver's configuration.
func (s *Solver) Config() Config {
	return s.cfg
}

// Evaluator returns the polynomial evaluator backing the solver.
func (s *Solver) Evaluator() *laguerre.Evaluator {
	return s.eval
}

// Roots returns the N roots of L_N^(Alpha) in increasing order.
func (s *Solver) Roots() ([]float64, error) {
	return s.eval.FindAllRoots(s.cfg.N, s.cfg.Alpha, s.cfg.Epsilon)
}

// Rule returns the N-point Gauss-Laguerre rule for Alpha.
func (s *Solver) Rule() (laguerre.Rule, error) {
	return s.eval.Rule(s.cfg.N, s.cfg.Alpha, s.cfg.Epsilon)
}

// SamplePolynomial returns density+1 evenly spaced points over [a, b] and
// the values of L_N^(Alpha) at them.
func (s *Solver) SamplePolynomial(a, b float64, density int) ([]float64, []float64, error) {
	if density < 1 {
		return nil, nil, invalid("density must be at least 1, got %d", density)
	}
	if !isFinite(a) || !isFinite(b) {
		return nil, nil, invalid("sampling interval [%g, %g] must be finite", a, b)
	}

	xs := make([]float64, density+1)
	ys := make([]float64, density+1)
	step := (b - a) / float64(density)
	for i := range xs {
		xs[i] = a + step*float64(i)
		ys[i] = s.eval.Eval(s.cfg.N, s.cfg.Alpha, xs[i])
	}
	return xs, ys, nil
}

// Reset returns the seeded session c_i = 1/(i+1).
func (s *Solver) Reset() Session {
	c := make([]float64, s.cfg.NPart+1)
	for i := range c {
		c[i] = 1 / float64(i+1)
	}
	return Session{Coefficients: c}
}

// Advance performs one Picard step and returns the next session. The input
// session is not modified; every new coefficient is computed from the same
// snapshot of the old vector.
//
// For k = 0..NPart the step evaluates
//
//	c_k = A · Σ_i ŵ_i · f(1 - e^{-A τ_i}, y(τ_i)) · sqrt(B) · L_k(B τ_i) · e^{(1-A-B) τ_i}
//
// over the nodes τ_i of the N-point rule, where y is the current expansion
// and ŵ_i = w_i · τ_i^{-Alpha} removes the rule's x^Alpha weight.
func (s *Solver) Advance(sess Session, f RHS) (Session, error) {
	if f == nil {
		return Session{}, invalid("right-hand side is nil")
	}
	if len(sess.Coefficients) != s.cfg.NPart+1 {
		return Session{}, invalid("session has %d coefficients, want %d", len(sess.Coefficients), s.cfg.NPart+1)
	}

	rule, err := s.Rule()
	if err != nil {
		return Session{}, fmt.Errorf("failed to build quadrature rule: %w", err)
	}

	a, b := s.cfg.A, s.cfg.B
	sqrtB := math.Sqrt(b)

	// kernel[i] collects every factor of the integrand at node i except
	// L_k(B τ_i), which is the only part that depends on k.
	kernel := make([]float64, rule.Len())
	for i, tau := range rule.Nodes {
		w := rule.Weights[i]
		if s.cfg.Alpha != 0 {
			w *= math.Pow(tau, -s.cfg.Alpha)
		}
		y := Solution(s.eval, tau, b, s.cfg.NPart, s.cfg.Y0, sess.Coefficients)
		x := 1 - math.Exp(-a*tau)
		kernel[i] = w * f(x, y) * sqrtB * math.Exp((1-a-b)*tau)
	}

	next := make([]float64, len(sess.Coefficients))
	for k := range next {
		var sum float64
		for i, tau := range rule.Nodes {
			sum += kernel[i] * s.eval.Eval(k, 0, b*tau)
		}
		next[k] = a * sum
		if !isFinite(next[k]) {
			return Session{}, fmt.Errorf("%w: coefficient %d is %g after step %d", ErrNonConvergence, k, next[k], sess.Iteration+1)
		}
	}

	dist := Distance(sess.Coefficients, next)
	if !isFinite(dist) {
		return Session{}, fmt.Errorf("%w: distance overflow after step %d", ErrNonConvergence, sess.Iteration+1)
	}

	slog.Debug("Picard step", "iteration", sess.Iteration+1, "distance", dist)

	return Session{
		Iteration:    sess.Iteration + 1,
		Coefficients: next,
		Distance:     dist,
	}, nil
}
