package solver

import (
	"fmt"
	"math"
	"sort"
)

// Equation is a named Cauchy problem y' = RHS(x, y), y(0) = Y0, together
// with the substitution parameters it is usually solved with.
type Equation struct {
	Name        string
	Description string
	RHS         RHS
	Y0          float64
	A           float64
	B           float64

	// Exact is the closed-form solution in x, if known.
	Exact func(x float64) float64
}

// Apply copies the equation's initial value and substitution parameters
// into cfg.
func (eq Equation) Apply(cfg Config) Config {
	cfg.Y0 = eq.Y0
	cfg.A = eq.A
	cfg.B = eq.B
	return cfg
}

var presets = map[string]Equation{
	"gaussian": {
		Name:        "gaussian",
		Description: "y' = x·exp(-x²) - 2xy, y(0) = 1",
		RHS: func(x, y float64) float64 {
			return x*math.Exp(-x*x) - 2*x*y
		},
		Y0: 1,
		A:  1,
		B:  1,
		Exact: func(x float64) float64 {
			return (x*x/2 + 1) * math.Exp(-x*x)
		},
	},
	"exponential": {
		Name:        "exponential",
		Description: "y' = exp(x) + y, y(0) = 2",
		RHS: func(x, y float64) float64 {
			return math.Exp(x) + y
		},
		Y0: 2,
		A:  2,
		B:  1,
		Exact: func(x float64) float64 {
			return (x + 2) * math.Exp(x)
		},
	},
}

// Lookup returns the preset equation with the given name.
func Lookup(name string) (Equation, error) {
	eq, ok := presets[name]
	if !ok {
		return Equation{}, fmt.Errorf("%w: unknown equation %q (available: %v)", ErrInvalidConfiguration, name, PresetNames())
	}
	return eq, nil
}

// PresetNames lists the preset equations in alphabetical order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
