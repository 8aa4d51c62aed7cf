package laguerre

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsArePositive(t *testing.T) {
	e := NewEvaluator(nil)

	for _, alpha := range []float64{0, 0.5, 1, 2} {
		for k := 1; k <= 25; k++ {
			weights, err := e.Weights(k, alpha)
			require.NoError(t, err)
			require.Len(t, weights, k)
			for i, w := range weights {
				assert.Greater(t, w, 0.0, "k=%d alpha=%g i=%d", k, alpha, i)
			}
		}
	}
}

func TestWeightsAlignWithRoots(t *testing.T) {
	e := NewEvaluator(nil)

	rule, err := e.Rule(8, 0, DefaultEpsilon)
	require.NoError(t, err)

	roots, err := e.FindAllRoots(8, 0, DefaultEpsilon)
	require.NoError(t, err)
	assert.Equal(t, roots, rule.Nodes)

	for i, r := range roots {
		assert.Equal(t, e.Weight(r, 8, 0), rule.Weights[i])
	}
}

func TestQuadratureExactness(t *testing.T) {
	e := NewEvaluator(nil)

	rule, err := e.Rule(10, 0, DefaultEpsilon)
	require.NoError(t, err)

	// ∫ x^m e^{-x} dx = m!
	moment := rule.Integrate(func(x float64) float64 { return x * x })
	assert.InDelta(t, 2.0, moment, 1e-8)

	factorial := 1.0
	for m := 0; m <= 2*rule.Len()-1; m++ {
		if m > 0 {
			factorial *= float64(m)
		}
		got := rule.Integrate(func(x float64) float64 { return math.Pow(x, float64(m)) })
		assert.InDelta(t, 1.0, got/factorial, 1e-8, "moment %d", m)
	}
}

func TestQuadratureExactnessGeneralAlpha(t *testing.T) {
	e := NewEvaluator(nil)

	// ∫ x^m x^alpha e^{-x} dx = Γ(m+alpha+1)
	for _, alpha := range []float64{0.5, 1, 2} {
		rule, err := e.Rule(10, alpha, DefaultEpsilon)
		require.NoError(t, err)
		for m := 0; m <= 6; m++ {
			got := rule.Integrate(func(x float64) float64 { return math.Pow(x, float64(m)) })
			assert.InDelta(t, 1.0, got/math.Gamma(float64(m)+alpha+1), 1e-8, "alpha=%g m=%d", alpha, m)
		}
	}
}

func TestWeights32Points(t *testing.T) {
	e := NewEvaluator(nil)

	weights, err := e.Weights(32, 0)
	require.NoError(t, err)

	// Reference values for the 32-point rule.
	want := []float64{0.109218341953551, 0.210443107938996, 0.235213229669841, 0.195903335972852}
	for i := range want {
		assert.InDelta(t, want[i], weights[i], 1e-10, "weight %d", i)
	}
	assert.InEpsilon(t, 4.5105361938963e-48, weights[31], 1e-6)
}

func TestRuleRejectsZeroOrder(t *testing.T) {
	e := NewEvaluator(nil)

	_, err := e.Rule(0, 0, DefaultEpsilon)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestRuleIsMemoized(t *testing.T) {
	e := NewEvaluator(nil)

	first, err := e.Rule(6, 0, DefaultEpsilon)
	require.NoError(t, err)
	first.Weights[0] = 0

	second, err := e.Rule(6, 0, DefaultEpsilon)
	require.NoError(t, err)
	assert.Greater(t, second.Weights[0], 0.0)
	assert.Equal(t, 1, e.Cache().Stats().Rules)
}
