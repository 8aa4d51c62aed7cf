package laguerre

import (
	"fmt"
	"math"
)

// Rule is a Gauss-Laguerre quadrature rule: Σ Weights[i]·f(Nodes[i])
// approximates ∫_0^∞ f(x)·x^alpha·e^{-x} dx, exactly for polynomials f of
// degree ≤ 2·len(Nodes)-1.
type Rule struct {
	Degree  int       `json:"degree"`
	Alpha   float64   `json:"alpha"`
	Nodes   []float64 `json:"nodes"`
	Weights []float64 `json:"weights"`
}

// Len returns the number of nodes.
func (r Rule) Len() int {
	return len(r.Nodes)
}

// Integrate applies the rule to f.
func (r Rule) Integrate(f func(x float64) float64) float64 {
	var sum float64
	for i, x := range r.Nodes {
		sum += r.Weights[i] * f(x)
	}
	return sum
}

func (r Rule) clone() Rule {
	return Rule{
		Degree:  r.Degree,
		Alpha:   r.Alpha,
		Nodes:   append([]float64(nil), r.Nodes...),
		Weights: append([]float64(nil), r.Weights...),
	}
}

// Weight returns the Gauss-Laguerre weight belonging to root r of L_k^(alpha):
//
//	w = Γ(k+alpha+1) / k! / (r · L_{k-1}^(alpha+1)(r)^2)
//
// using L_k^(alpha)' = -L_{k-1}^(alpha+1). The gamma ratio is 1 for alpha = 0.
func (e *Evaluator) Weight(r float64, k int, alpha float64) float64 {
	d := e.Eval(k-1, alpha+1, r)
	return gammaRatio(k, alpha) / (r * d * d)
}

// gammaRatio returns Γ(k+alpha+1)/Γ(k+1).
func gammaRatio(k int, alpha float64) float64 {
	if alpha == 0 {
		return 1
	}
	num, _ := math.Lgamma(float64(k) + alpha + 1)
	den, _ := math.Lgamma(float64(k) + 1)
	return math.Exp(num - den)
}

// Rule returns the k-point rule for alpha with nodes found to precision eps.
// Rules are memoized per (k, alpha, eps).
func (e *Evaluator) Rule(k int, alpha, eps float64) (Rule, error) {
	if k < 1 {
		return Rule{}, fmt.Errorf("%w: quadrature order must be at least 1, got %d", ErrInvalidConfiguration, k)
	}

	key := ruleKey{k: k, alpha: alpha, eps: eps}
	if rule, ok := e.cache.rules.get(key); ok {
		return rule.clone(), nil
	}

	roots, err := e.FindAllRoots(k, alpha, eps)
	if err != nil {
		return Rule{}, err
	}

	weights := make([]float64, k)
	for i, r := range roots {
		weights[i] = e.Weight(r, k, alpha)
	}

	rule := Rule{Degree: k, Alpha: alpha, Nodes: roots, Weights: weights}
	e.cache.rules.put(key, rule.clone())
	return rule, nil
}

// Weights returns the weights aligned index-for-index with
// FindAllRoots(k, alpha, DefaultEpsilon).
func (e *Evaluator) Weights(k int, alpha float64) ([]float64, error) {
	rule, err := e.Rule(k, alpha, DefaultEpsilon)
	if err != nil {
		return nil, err
	}
	return rule.Weights, nil
}
