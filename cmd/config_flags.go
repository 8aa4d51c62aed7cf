package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hakniyev/cauchysolver/internal/solver"
)

// solverFlags binds the solver configuration to a command's flags.
// Flags left unset take the preset equation's values, then the defaults.
type solverFlags struct {
	equation      string
	n             int
	alpha         float64
	nPart         int
	a             float64
	b             float64
	epsilon       float64
	threshold     float64
	y0            float64
	maxIterations int
}

func (f *solverFlags) register(cmd *cobra.Command) {
	d := solver.DefaultConfig()
	fs := cmd.Flags()
	fs.StringVar(&f.equation, "equation", "gaussian", "Preset equation ("+strings.Join(solver.PresetNames(), ", ")+")")
	fs.IntVar(&f.n, "n", d.N, "Quadrature order")
	fs.Float64Var(&f.alpha, "alpha", d.Alpha, "Laguerre parameter of the quadrature rule")
	fs.IntVar(&f.nPart, "npart", d.NPart, "Highest expansion index (npart+1 coefficients)")
	fs.Float64Var(&f.a, "a", d.A, "Time-scale parameter A (default: the equation's)")
	fs.Float64Var(&f.b, "b", d.B, "Basis scale parameter B (default: the equation's)")
	fs.Float64Var(&f.epsilon, "epsilon", d.Epsilon, "Root-finding tolerance")
	fs.Float64Var(&f.threshold, "threshold", d.Threshold, "Convergence threshold on the coefficient distance")
	fs.Float64Var(&f.y0, "y0", d.Y0, "Initial value (default: the equation's)")
	fs.IntVar(&f.maxIterations, "max-iterations", d.MaxIterations, "Picard iteration budget")
}

// resolve returns the selected equation and the validated configuration.
func (f *solverFlags) resolve(cmd *cobra.Command) (solver.Equation, solver.Config, error) {
	eq, err := solver.Lookup(f.equation)
	if err != nil {
		return solver.Equation{}, solver.Config{}, err
	}

	cfg := eq.Apply(solver.DefaultConfig())
	fs := cmd.Flags()
	overrides := []struct {
		name  string
		apply func()
	}{
		{"n", func() { cfg.N = f.n }},
		{"alpha", func() { cfg.Alpha = f.alpha }},
		{"npart", func() { cfg.NPart = f.nPart }},
		{"a", func() { cfg.A = f.a }},
		{"b", func() { cfg.B = f.b }},
		{"epsilon", func() { cfg.Epsilon = f.epsilon }},
		{"threshold", func() { cfg.Threshold = f.threshold }},
		{"y0", func() { cfg.Y0 = f.y0 }},
		{"max-iterations", func() { cfg.MaxIterations = f.maxIterations }},
	}
	for _, o := range overrides {
		if fs.Changed(o.name) {
			o.apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return solver.Equation{}, solver.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return eq, cfg, nil
}
