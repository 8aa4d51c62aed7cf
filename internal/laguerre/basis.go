package laguerre

import (
	"fmt"
	"math"
)

// Basis returns the Sobolev-Laguerre function
//
//	l_j(tau; b) = sqrt(b) · tau · L_{j-1}^(1)(b·tau) / j,   j >= 1,
//
// which is the integral from 0 to tau of sqrt(b)·L_{j-1}(b·s) ds.
// Values are memoized on (tau, b, j).
func (e *Evaluator) Basis(tau, b float64, j int) float64 {
	if j < 1 {
		panic(fmt.Sprintf("laguerre: basis index must be >= 1, got %d", j))
	}

	key := basisKey{tau: tau, b: b, j: j}
	if v, ok := e.cache.basis.get(key); ok {
		return v
	}

	v := math.Sqrt(b) * tau * e.Eval(j-1, 1, b*tau) / float64(j)
	if !math.IsNaN(v) {
		e.cache.basis.put(key, v)
	}
	return v
}

// BasisDerivative returns d/dtau l_j(tau; b) = sqrt(b) · L_{j-1}(b·tau).
func (e *Evaluator) BasisDerivative(tau, b float64, j int) float64 {
	if j < 1 {
		panic(fmt.Sprintf("laguerre: basis index must be >= 1, got %d", j))
	}
	return math.Sqrt(b) * e.Eval(j-1, 0, b*tau)
}
