package solver

import "math"

// Residual measures how well a session satisfies the transformed equation
// y'(t) = A e^{-A t} f(1 - e^{-A t}, y(t)). It returns the root mean square of
// the pointwise defect, weighted by e^{-A t} = 1 - x, over the grid used by
// SolutionSamples.
func (s *Solver) Residual(sess Session, f RHS, density int) (float64, error) {
	if f == nil {
		return 0, invalid("right-hand side is nil")
	}
	if density < 1 {
		return 0, invalid("density must be at least 1, got %d", density)
	}
	if len(sess.Coefficients) != s.cfg.NPart+1 {
		return 0, invalid("session has %d coefficients, want %d", len(sess.Coefficients), s.cfg.NPart+1)
	}

	a := s.cfg.A
	var sum float64
	for i := 0; i < density; i++ {
		x := float64(i) / float64(density)
		t := TimeOf(x, a)
		decay := 1 - x

		defect := s.Derivative(sess, t) - a*decay*f(x, s.Value(sess, t))
		sum += (defect * decay) * (defect * decay)
	}
	return math.Sqrt(sum / float64(density)), nil
}
