package solver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakniyev/cauchysolver/internal/laguerre"
)

func gaussianSolver(t *testing.T) (*Solver, Equation) {
	t.Helper()

	eq, err := Lookup("gaussian")
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.N = 20
	cfg.NPart = 15
	cfg.Alpha = 0
	cfg.Threshold = 1e-3
	s, err := Configure(eq.Apply(cfg))
	require.NoError(t, err)
	return s, eq
}

func TestSolverRoots(t *testing.T) {
	s, _ := gaussianSolver(t)

	roots, err := s.Roots()
	require.NoError(t, err)
	require.Len(t, roots, 20)

	for i := 1; i < len(roots); i++ {
		assert.Greater(t, roots[i], roots[i-1])
	}
	assert.Greater(t, roots[0], 0.0)
	assert.Less(t, roots[19], laguerre.MaxRootBound(20))
}

func TestSamplePolynomial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.N = 3
	s, err := Configure(cfg)
	require.NoError(t, err)

	xs, ys, err := s.SamplePolynomial(0, 10, 100)
	require.NoError(t, err)
	require.Len(t, xs, 101)
	require.Len(t, ys, 101)

	assert.Equal(t, 0.0, xs[0])
	assert.InDelta(t, 10.0, xs[100], 1e-12)
	for i, x := range xs {
		want := (-x*x*x + 9*x*x - 18*x + 6) / 6
		assert.InDelta(t, want, ys[i], 1e-9, "x=%g", x)
	}

	_, _, err = s.SamplePolynomial(0, 1, 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	_, _, err = s.SamplePolynomial(0, math.Inf(1), 10)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestReset(t *testing.T) {
	s, _ := gaussianSolver(t)

	sess := s.Reset()
	require.Len(t, sess.Coefficients, 16)
	assert.Equal(t, 0, sess.Iteration)
	for i, c := range sess.Coefficients {
		assert.Equal(t, 1/float64(i+1), c)
	}
	assert.False(t, sess.Converged(1))
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	s, eq := gaussianSolver(t)

	seed := s.Reset()
	before := seed.Clone()

	next, err := s.Advance(seed, eq.RHS)
	require.NoError(t, err)

	if diff := cmp.Diff(before, seed); diff != "" {
		t.Errorf("Advance mutated its input (-before +after):\n%s", diff)
	}
	assert.Equal(t, 1, next.Iteration)
	assert.InDelta(t, Distance(seed.Coefficients, next.Coefficients), next.Distance, 0)
}

func TestAdvanceUsesOneSnapshot(t *testing.T) {
	s, eq := gaussianSolver(t)
	seed := s.Reset()

	next, err := s.Advance(seed, eq.RHS)
	require.NoError(t, err)

	// Recompute a single coefficient by hand from the seed only.
	rule, err := s.Rule()
	require.NoError(t, err)
	ev := s.Evaluator()
	k := 3
	var sum float64
	for i, tau := range rule.Nodes {
		y := Solution(ev, tau, 1, 15, 1, seed.Coefficients)
		sum += rule.Weights[i] * eq.RHS(1-math.Exp(-tau), y) * ev.Eval(k, 0, tau) * math.Exp(-tau)
	}
	assert.InDelta(t, sum, next.Coefficients[k], 1e-12)
}

func TestAdvanceRejectsBadInput(t *testing.T) {
	s, eq := gaussianSolver(t)

	_, err := s.Advance(s.Reset(), nil)
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = s.Advance(Session{Coefficients: []float64{1, 2}}, eq.RHS)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestAdvanceNonFinite(t *testing.T) {
	s, _ := gaussianSolver(t)

	_, err := s.Advance(s.Reset(), func(x, y float64) float64 { return math.NaN() })
	require.ErrorIs(t, err, ErrNonConvergence)
}

func TestManualIterationMatchesSolve(t *testing.T) {
	s, eq := gaussianSolver(t)

	sess := s.Reset()
	for i := 0; i < 50 && !sess.Converged(s.Config().Threshold); i++ {
		var err error
		sess, err = s.Advance(sess, eq.RHS)
		require.NoError(t, err)
	}

	res, err := s.Solve(context.Background(), eq.RHS)
	require.NoError(t, err)

	assert.Equal(t, res.Session.Iteration, sess.Iteration)
	assert.Equal(t, res.Session.Coefficients, sess.Coefficients)
}

func TestSolveGaussianConverges(t *testing.T) {
	s, eq := gaussianSolver(t)

	var observed []int
	res, err := s.Solve(context.Background(), eq.RHS, WithObserver(func(sess Session) {
		observed = append(observed, sess.Iteration)
	}))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, "converged", res.Verdict)
	assert.Less(t, res.Session.Iteration, 50)
	assert.LessOrEqual(t, res.Session.Distance, 1e-3)
	assert.Len(t, res.History, res.Session.Iteration)
	assert.Len(t, observed, res.Session.Iteration)

	xs, ys, err := s.SolutionSamples(res.Session, 1000)
	require.NoError(t, err)
	require.Len(t, xs, 1000)

	for i, x := range xs {
		assert.InDelta(t, eq.Exact(x), ys[i], 1e-2, "x=%g", x)
	}

	report, err := CompareExact(xs, ys, eq.Exact)
	require.NoError(t, err)
	assert.Less(t, report.Max, 1e-2)
	assert.LessOrEqual(t, report.Mean, report.Max)
}

func TestSolveExponentialConverges(t *testing.T) {
	eq, err := Lookup("exponential")
	require.NoError(t, err)

	s, err := Configure(eq.Apply(DefaultConfig()))
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), eq.RHS)
	require.NoError(t, err)
	assert.Less(t, res.Session.Iteration, 50)

	xs, ys, err := s.SolutionSamples(res.Session, 1000)
	require.NoError(t, err)

	report, err := CompareExact(xs, ys, eq.Exact)
	require.NoError(t, err)
	assert.Less(t, report.Max, 5e-2)
}

func TestSolveNonConvergence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 20
	s, err := Configure(cfg)
	require.NoError(t, err)

	explosive := func(x, y float64) float64 { return 50 * y }

	res, err := s.Solve(context.Background(), explosive)
	require.ErrorIs(t, err, ErrNonConvergence)
	require.NotNil(t, res)
	assert.False(t, res.Converged)
	assert.Equal(t, "exhausted", res.Verdict)
	assert.Equal(t, 20, res.Session.Iteration)
}

func TestSolveDivergenceDetection(t *testing.T) {
	s, err := Configure(DefaultConfig())
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), func(x, y float64) float64 { return 50 * y }, WithDivergencePatience(5))
	require.ErrorIs(t, err, ErrNonConvergence)
	assert.Equal(t, "diverged", res.Verdict)
	assert.Less(t, res.Session.Iteration, DefaultMaxIterations)
}

func TestSolveBudgetTooSmall(t *testing.T) {
	s, eq := gaussianSolver(t)
	cfg := s.Config()
	cfg.MaxIterations = 3
	s, err := Configure(cfg)
	require.NoError(t, err)

	_, err = s.Solve(context.Background(), eq.RHS)
	require.ErrorIs(t, err, ErrNonConvergence)
}

func TestSolveCancelled(t *testing.T) {
	s, eq := gaussianSolver(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Solve(ctx, eq.RHS)
	require.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, res.Session.Iteration)
}

func TestSolveNilRHS(t *testing.T) {
	s, _ := gaussianSolver(t)

	_, err := s.Solve(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSolveGeneralAlpha(t *testing.T) {
	s, eq := gaussianSolver(t)
	cfg := s.Config()
	cfg.Alpha = 0.5
	s, err := Configure(cfg)
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), eq.RHS)
	require.NoError(t, err)

	xs, ys, err := s.SolutionSamples(res.Session, 1000)
	require.NoError(t, err)
	report, err := CompareExact(xs, ys, eq.Exact)
	require.NoError(t, err)
	assert.Less(t, report.Max, 1e-2)
}

func TestSharedCacheGivesSameResult(t *testing.T) {
	eq, err := Lookup("gaussian")
	require.NoError(t, err)
	cfg := eq.Apply(DefaultConfig())

	cache := laguerre.NewCache()
	first, err := Configure(cfg, WithCache(cache))
	require.NoError(t, err)
	second, err := Configure(cfg, WithCache(cache))
	require.NoError(t, err)
	private, err := Configure(cfg)
	require.NoError(t, err)

	r1, err := first.Solve(context.Background(), eq.RHS)
	require.NoError(t, err)
	r2, err := second.Solve(context.Background(), eq.RHS)
	require.NoError(t, err)
	r3, err := private.Solve(context.Background(), eq.RHS)
	require.NoError(t, err)

	assert.Equal(t, r1.Session.Coefficients, r2.Session.Coefficients)
	assert.Equal(t, r1.Session.Coefficients, r3.Session.Coefficients)
	assert.Equal(t, 1, cache.Stats().Rules)
}

func TestResidual(t *testing.T) {
	s, eq := gaussianSolver(t)

	res, err := s.Solve(context.Background(), eq.RHS)
	require.NoError(t, err)

	converged, err := s.Residual(res.Session, eq.RHS, 200)
	require.NoError(t, err)
	seeded, err := s.Residual(s.Reset(), eq.RHS, 200)
	require.NoError(t, err)

	assert.Less(t, converged, 1e-3)
	assert.Greater(t, seeded, converged)

	_, err = s.Residual(res.Session, nil, 200)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = s.Residual(res.Session, eq.RHS, 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSolutionSamplesGrid(t *testing.T) {
	s, _ := gaussianSolver(t)
	sess := s.Reset()

	xs, ys, err := s.SolutionSamples(sess, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75}, xs)

	// At x = 0 the solution equals y0.
	assert.Equal(t, 1.0, ys[0])
	assert.InDelta(t, s.Value(sess, -math.Log(0.5)), ys[2], 1e-12)

	_, _, err = s.SolutionSamples(sess, 0)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSolutionTruncatesToNPart(t *testing.T) {
	ev := laguerre.NewEvaluator(nil)
	c := []float64{1, 2, 3}

	full := Solution(ev, 0.7, 1, 2, 0.5, c)
	want := 0.5 + ev.Basis(0.7, 1, 1) + 2*ev.Basis(0.7, 1, 2) + 3*ev.Basis(0.7, 1, 3)
	assert.InDelta(t, want, full, 1e-14)

	partial := Solution(ev, 0.7, 1, 0, 0.5, c)
	assert.InDelta(t, 0.5+ev.Basis(0.7, 1, 1), partial, 1e-14)
}
