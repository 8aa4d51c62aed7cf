// Package laguerre implements the numerical kernel of the solver: generalized
// Laguerre polynomials, their roots, Gauss-Laguerre quadrature rules and the
// Sobolev-Laguerre basis functions built on them.
package laguerre

import "math"

// Evaluator evaluates generalized Laguerre polynomials L_k^(alpha) and the
// quantities derived from them, memoizing results in its Cache.
type Evaluator struct {
	cache *Cache
}

// NewEvaluator creates an evaluator backed by cache. A nil cache gets a
// fresh private one.
func NewEvaluator(cache *Cache) *Evaluator {
	if cache == nil {
		cache = NewCache()
	}
	return &Evaluator{cache: cache}
}

// Cache returns the cache backing the evaluator.
func (e *Evaluator) Cache() *Cache {
	return e.cache
}

// Eval returns L_k^(alpha)(x). Degrees k <= 0 evaluate to 1.
func (e *Evaluator) Eval(k int, alpha, x float64) float64 {
	if math.IsNaN(x) || math.IsNaN(alpha) {
		return math.NaN()
	}

	key := polyKey{k: k, alpha: alpha, x: x}
	if v, ok := e.cache.poly.get(key); ok {
		return v
	}

	v := Eval(k, alpha, x)
	e.cache.poly.put(key, v)
	return v
}

// Eval computes L_k^(alpha)(x) with the three-term recurrence
//
//	L_0 = 1, L_1 = alpha + 1 - x,
//	L_i = ((2i-1+alpha-x) L_{i-1} - (i-1+alpha) L_{i-2}) / i,
//
// without touching any cache.
func Eval(k int, alpha, x float64) float64 {
	if k <= 0 {
		return 1
	}

	prev := 1.0
	cur := alpha + 1 - x
	for i := 2; i <= k; i++ {
		fi := float64(i)
		next := ((2*fi-1+alpha-x)*cur - (fi-1+alpha)*prev) / fi
		prev, cur = cur, next
	}
	return cur
}
