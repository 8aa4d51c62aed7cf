package solver

import (
	"math"

	"github.com/hakniyev/cauchysolver/internal/laguerre"
)

// Solution evaluates the truncated expansion
//
//	y(t) = y0 + Σ_{k=0}^{nPart} c_k · l_{k+1}(t; b)
//
// Coefficients beyond len(c) are treated as zero.
func Solution(ev *laguerre.Evaluator, t, b float64, nPart int, y0 float64, c []float64) float64 {
	sum := y0
	for k := 0; k <= nPart && k < len(c); k++ {
		sum += c[k] * ev.Basis(t, b, k+1)
	}
	return sum
}

// Value returns the approximate solution at t for the given session.
func (s *Solver) Value(sess Session, t float64) float64 {
	return Solution(s.eval, t, s.cfg.B, s.cfg.NPart, s.cfg.Y0, sess.Coefficients)
}

// Derivative returns d/dt of the approximate solution at t.
func (s *Solver) Derivative(sess Session, t float64) float64 {
	var sum float64
	for k := 0; k <= s.cfg.NPart && k < len(sess.Coefficients); k++ {
		sum += sess.Coefficients[k] * s.eval.BasisDerivative(t, s.cfg.B, k+1)
	}
	return sum
}

// TimeOf maps x in [0, 1) to t = -ln(1-x)/a.
func TimeOf(x, a float64) float64 {
	return -math.Log1p(-x) / a
}

// SolutionSamples samples the solution on the uniform grid x_i = i/density,
// i = 0..density-1, through t_i = -ln(1-x_i)/A. It returns the x_i and the
// solution values.
func (s *Solver) SolutionSamples(sess Session, density int) ([]float64, []float64, error) {
	if density < 1 {
		return nil, nil, invalid("density must be at least 1, got %d", density)
	}
	if len(sess.Coefficients) != s.cfg.NPart+1 {
		return nil, nil, invalid("session has %d coefficients, want %d", len(sess.Coefficients), s.cfg.NPart+1)
	}

	xs := make([]float64, density)
	ys := make([]float64, density)
	for i := range xs {
		xs[i] = float64(i) / float64(density)
		ys[i] = s.Value(sess, TimeOf(xs[i], s.cfg.A))
	}
	return xs, ys, nil
}
