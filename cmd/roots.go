package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hakniyev/cauchysolver/internal/laguerre"
)

var (
	rootsDegree  int
	rootsAlpha   float64
	rootsEpsilon float64
	rootsWeights bool
	rootsOut     string
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "Print the roots of a generalized Laguerre polynomial",
	Long: `Prints the roots of L_n^(alpha) in increasing order as CSV.
With --weights the Gauss-Laguerre weight of every root is added.`,
	RunE: runRoots,
}

func init() {
	rootsCmd.Flags().IntVar(&rootsDegree, "n", 20, "Polynomial degree")
	rootsCmd.Flags().Float64Var(&rootsAlpha, "alpha", 0, "Laguerre parameter")
	rootsCmd.Flags().Float64Var(&rootsEpsilon, "epsilon", laguerre.DefaultEpsilon, "Root-finding tolerance")
	rootsCmd.Flags().BoolVar(&rootsWeights, "weights", false, "Also print quadrature weights")
	rootsCmd.Flags().StringVarP(&rootsOut, "out", "o", "-", "Output CSV path (- for stdout)")
	rootCmd.AddCommand(rootsCmd)
}

func runRoots(cmd *cobra.Command, args []string) error {
	ev := laguerre.NewEvaluator(nil)

	out, closeOut, err := openOutput(cmd.OutOrStdout(), rootsOut)
	if err != nil {
		return err
	}
	defer closeOut()

	if rootsWeights {
		rule, err := ev.Rule(rootsDegree, rootsAlpha, rootsEpsilon)
		if err != nil {
			return fmt.Errorf("failed to build quadrature rule: %w", err)
		}
		slog.Debug("Quadrature rule built", "n", rootsDegree, "alpha", rootsAlpha)
		return writeColumns(out, []string{"i", "root", "weight"}, indices(rule.Len()), rule.Nodes, rule.Weights)
	}

	roots, err := ev.FindAllRoots(rootsDegree, rootsAlpha, rootsEpsilon)
	if err != nil {
		return fmt.Errorf("failed to find roots: %w", err)
	}
	slog.Debug("Roots found", "n", rootsDegree, "alpha", rootsAlpha, "count", len(roots))
	return writeColumns(out, []string{"i", "root"}, indices(len(roots)), roots)
}
