package laguerre

import (
	"fmt"
	"math"
)

// DefaultEpsilon is the bisection precision used when none is given.
const DefaultEpsilon = 1e-12

// FindRoot returns the root of L_k^(alpha) inside [a, b] by bisection.
//
// The polynomial must change sign on [a, b] and have a single root there.
// Same-sign endpoints yield ErrBracketingFailure. The search stops when the
// interval is narrower than eps or |L(m)| < eps; a coarse eps silently gives
// a coarse root.
func (e *Evaluator) FindRoot(k int, alpha, a, b, eps float64) (float64, error) {
	if !(eps > 0) {
		return 0, fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalidConfiguration, eps)
	}

	fa := e.Eval(k, alpha, a)
	fb := e.Eval(k, alpha, b)
	if fa*fb > 0 {
		return 0, fmt.Errorf("%w: L_%d(%g)=%g, L_%d(%g)=%g",
			ErrBracketingFailure, k, a, fa, k, b, fb)
	}

	for {
		mid := (a + b) / 2
		// mid == a or mid == b once the endpoints are adjacent floats.
		if math.Abs(a-b) < eps || mid == a || mid == b {
			return mid, nil
		}

		fm := e.Eval(k, alpha, mid)
		if math.Abs(fm) < eps {
			return mid, nil
		}

		if fa*fm < 0 {
			b = mid
		} else {
			a, fa = mid, fm
		}
	}
}

// MaxRootBound is the upper end of the search range for the roots of the
// degree-k polynomial: every root lies in (0, 4k+2).
func MaxRootBound(k int) float64 {
	return float64(4*k + 2)
}

// FindAllRoots returns the k roots of L_k^(alpha) in increasing order.
//
// Roots are built layer by layer: the j-1 roots of L_{j-1} split
// (0, 4k+2) into j intervals, and interlacing puts exactly one root of L_j in
// each. The result is memoized per (k, alpha, eps); callers get their own
// copy.
func (e *Evaluator) FindAllRoots(k int, alpha, eps float64) ([]float64, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: degree must be non-negative, got %d", ErrInvalidConfiguration, k)
	}
	if !(eps > 0) {
		return nil, fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalidConfiguration, eps)
	}

	key := ruleKey{k: k, alpha: alpha, eps: eps}
	if roots, ok := e.cache.roots.get(key); ok {
		return append([]float64(nil), roots...), nil
	}

	maxBound := MaxRootBound(k)

	// ends[0..j] holds the interval endpoints of layer j; roots holds the
	// roots of the previous layer and is overwritten in place.
	ends := make([]float64, k+1)
	roots := make([]float64, 0, k)

	for j := 1; j <= k; j++ {
		ends[0] = 0
		copy(ends[1:j], roots)
		ends[j] = maxBound

		roots = roots[:0]
		for i := 0; i < j; i++ {
			r, err := e.FindRoot(j, alpha, ends[i], ends[i+1], eps)
			if err != nil {
				return nil, fmt.Errorf("degree %d, interval %d of %d: %w", j, i+1, j, err)
			}
			roots = append(roots, r)
		}
	}

	e.cache.roots.put(key, append([]float64(nil), roots...))
	return roots, nil
}
