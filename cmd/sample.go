package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hakniyev/cauchysolver/internal/solver"
)

var (
	sampleDegree  int
	sampleAlpha   float64
	sampleFrom    float64
	sampleTo      float64
	sampleDensity int
	sampleOut     string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample a generalized Laguerre polynomial on an interval",
	Long:  `Prints density+1 evenly spaced points of L_n^(alpha) over [from, to] as CSV.`,
	RunE:  runSample,
}

func init() {
	sampleCmd.Flags().IntVar(&sampleDegree, "n", 5, "Polynomial degree")
	sampleCmd.Flags().Float64Var(&sampleAlpha, "alpha", 0, "Laguerre parameter")
	sampleCmd.Flags().Float64Var(&sampleFrom, "from", 0, "Interval start")
	sampleCmd.Flags().Float64Var(&sampleTo, "to", 20, "Interval end")
	sampleCmd.Flags().IntVar(&sampleDensity, "density", 200, "Number of subintervals")
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "-", "Output CSV path (- for stdout)")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg := solver.DefaultConfig()
	cfg.N = sampleDegree
	cfg.Alpha = sampleAlpha

	s, err := solver.Configure(cfg)
	if err != nil {
		return err
	}
	xs, ys, err := s.SamplePolynomial(sampleFrom, sampleTo, sampleDensity)
	if err != nil {
		return fmt.Errorf("failed to sample polynomial: %w", err)
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), sampleOut)
	if err != nil {
		return err
	}
	defer closeOut()
	return writeColumns(out, []string{"x", "y"}, xs, ys)
}
