package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/hakniyev/cauchysolver/internal/opt"
	"github.com/hakniyev/cauchysolver/internal/solver"
)

var (
	tuneFlags    solverFlags
	tuneLower    float64
	tuneUpper    float64
	tuneIters    int
	tunePopSize  int
	tuneSeed     int64
	tuneDensity  int
	tunePatience int
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search the substitution parameters A and B",
	Long: `Uses the mayfly optimizer to find the (A, B) pair that minimizes the
residual of the selected equation, holding the other settings fixed.
Prints the best pair as JSON.`,
	RunE: runTune,
}

func init() {
	d := solver.DefaultTuneConfig()
	tuneFlags.register(tuneCmd)
	tuneCmd.Flags().Float64Var(&tuneLower, "lower", d.Lower, "Lower bound for A and B")
	tuneCmd.Flags().Float64Var(&tuneUpper, "upper", d.Upper, "Upper bound for A and B")
	tuneCmd.Flags().IntVar(&tuneIters, "iters", 30, "Optimizer iterations")
	tuneCmd.Flags().IntVar(&tunePopSize, "pop", opt.MinPopulation, "Optimizer population size")
	tuneCmd.Flags().Int64Var(&tuneSeed, "seed", 42, "Random seed")
	tuneCmd.Flags().IntVar(&tuneDensity, "density", d.Density, "Residual grid size")
	tuneCmd.Flags().IntVar(&tunePatience, "patience", d.DivergencePatience, "Abandon candidates after N steps of growing distance")
	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
	eq, cfg, err := tuneFlags.resolve(cmd)
	if err != nil {
		return err
	}

	tc := solver.TuneConfig{
		Lower:              tuneLower,
		Upper:              tuneUpper,
		Density:            tuneDensity,
		DivergencePatience: tunePatience,
	}
	optimizer := opt.NewMayfly(tuneIters, tunePopSize, tuneSeed)

	res, err := solver.Tune(cmd.Context(), cfg, eq, optimizer, tc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Equation string `json:"equation"`
		*solver.TuneResult
	}{eq.Name, res})
}
