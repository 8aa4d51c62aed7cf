package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hakniyev/cauchysolver/internal/solver"
	"github.com/hakniyev/cauchysolver/internal/store"
)

var (
	solveFlags    solverFlags
	solveDensity  int
	solveOut      string
	solvePatience int
	solveSave     bool
	solveTrace    bool
	solveReuse    bool
	solveExact    bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a preset Cauchy problem and print the solution",
	Long: `Runs Picard iteration for the selected equation until the coefficient
distance drops below the threshold, then prints the solution sampled at
x = i/density as CSV. Results are saved to the store unless --save=false.

With --reuse a stored converged result with the same equation and
configuration is used instead of iterating.`,
	RunE: runSolve,
}

func init() {
	solveFlags.register(solveCmd)
	solveCmd.Flags().IntVar(&solveDensity, "density", 100, "Number of solution samples")
	solveCmd.Flags().StringVarP(&solveOut, "out", "o", "-", "Output CSV path (- for stdout)")
	solveCmd.Flags().IntVar(&solvePatience, "patience", 0, "Stop after N steps of growing distance (0 = off)")
	solveCmd.Flags().BoolVar(&solveSave, "save", true, "Save the result to the store")
	solveCmd.Flags().BoolVar(&solveTrace, "trace", false, "Record every step in the result's trace")
	solveCmd.Flags().BoolVar(&solveReuse, "reuse", false, "Reuse a stored converged result if one matches")
	solveCmd.Flags().BoolVar(&solveExact, "exact", true, "Add exact and error columns when the equation has a closed form")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	eq, cfg, err := solveFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if solveDensity < 1 {
		return fmt.Errorf("%w: density must be at least 1", solver.ErrInvalidConfiguration)
	}

	s, err := solver.Configure(cfg)
	if err != nil {
		return err
	}

	var st store.Store
	if solveSave || solveReuse {
		if st, err = openStore(); err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()
	}

	sess, solveErr := solveOrReuse(cmd, s, eq, st)
	if sess == nil {
		return solveErr
	}

	xs, ys, err := s.SolutionSamples(*sess, solveDensity)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), solveOut)
	if err != nil {
		return err
	}
	defer closeOut()

	if solveExact && eq.Exact != nil {
		report, err := solver.CompareExact(xs, ys, eq.Exact)
		if err != nil {
			return err
		}
		slog.Info("Accuracy",
			"equation", eq.Name,
			"max_error", report.Max,
			"at_x", report.ArgMax,
			"mean_error", report.Mean,
			"median_error", report.Median,
		)

		exact := make([]float64, len(xs))
		errs := make([]float64, len(xs))
		for i, x := range xs {
			exact[i] = eq.Exact(x)
			errs[i] = math.Abs(ys[i] - exact[i])
		}
		if err := writeColumns(out, []string{"x", "y", "exact", "error"}, xs, ys, exact, errs); err != nil {
			return err
		}
		return solveErr
	}

	if err := writeColumns(out, []string{"x", "y"}, xs, ys); err != nil {
		return err
	}
	return solveErr
}

// solveOrReuse returns the session to sample. A non-converged solve still
// returns its last session together with the error.
func solveOrReuse(cmd *cobra.Command, s *solver.Solver, eq solver.Equation, st store.Store) (*solver.Session, error) {
	cfg := s.Config()

	if solveReuse {
		rec, err := st.FindByFingerprint(store.Fingerprint(eq.Name, cfg))
		switch {
		case err == nil:
			slog.Info("Reusing stored result", "id", rec.ID, "iterations", rec.Iterations, "residual", rec.Residual)
			sess := rec.Session()
			return &sess, nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("failed to look up stored result: %w", err)
		}
	}

	id := uuid.New().String()
	var opts []solver.SolveOption
	if solvePatience > 0 {
		opts = append(opts, solver.WithDivergencePatience(solvePatience))
	}
	if solveTrace {
		tw, err := store.NewTraceWriter(dataDir, id, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace: %w", err)
		}
		defer tw.Close()
		opts = append(opts, solver.WithObserver(func(sess solver.Session) {
			if err := tw.Write(store.TraceEntry{
				Iteration:    sess.Iteration,
				Distance:     sess.Distance,
				Timestamp:    time.Now(),
				Coefficients: sess.Coefficients,
			}); err != nil {
				slog.Warn("Failed to write trace entry", "error", err)
			}
		}))
	}

	slog.Info("Starting solve", "id", id, "equation", eq.Name, "n", cfg.N, "nPart", cfg.NPart, "a", cfg.A, "b", cfg.B)

	res, err := s.Solve(cmd.Context(), eq.RHS, opts...)
	if res == nil {
		return nil, err
	}
	if err != nil && !errors.Is(err, solver.ErrNonConvergence) {
		return nil, err
	}

	residual, rerr := s.Residual(res.Session, eq.RHS, solveDensity)
	if rerr != nil {
		return nil, rerr
	}

	slog.Info("Solve finished",
		"id", id,
		"verdict", res.Verdict,
		"iterations", res.Session.Iteration,
		"distance", res.Session.Distance,
		"residual", residual,
		"elapsed", res.Elapsed,
	)

	if solveSave {
		rec := store.NewRecord(id, eq.Name, cfg, res)
		rec.Residual = residual
		if serr := st.Save(rec); serr != nil {
			return nil, fmt.Errorf("failed to save result: %w", serr)
		}
	}

	sess := res.Session
	return &sess, err
}
