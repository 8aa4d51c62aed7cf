package solver

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// ErrorReport summarizes the absolute error of sampled solution values
// against a closed-form solution.
type ErrorReport struct {
	Points int     `json:"points"`
	Max    float64 `json:"max"`
	ArgMax float64 `json:"argMax"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
}

// CompareExact compares ys, sampled at xs, with exact(xs[i]).
func CompareExact(xs, ys []float64, exact func(x float64) float64) (ErrorReport, error) {
	if exact == nil {
		return ErrorReport{}, invalid("no exact solution to compare with")
	}
	if len(xs) != len(ys) || len(xs) == 0 {
		return ErrorReport{}, invalid("need equally many xs and ys, got %d and %d", len(xs), len(ys))
	}

	errs := make(stats.Float64Data, len(xs))
	report := ErrorReport{Points: len(xs)}
	for i, x := range xs {
		errs[i] = math.Abs(ys[i] - exact(x))
		if errs[i] > report.Max || i == 0 {
			report.Max = errs[i]
			report.ArgMax = x
		}
	}

	var err error
	if report.Mean, err = stats.Mean(errs); err != nil {
		return ErrorReport{}, fmt.Errorf("failed to compute mean error: %w", err)
	}
	if report.Median, err = stats.Median(errs); err != nil {
		return ErrorReport{}, fmt.Errorf("failed to compute median error: %w", err)
	}
	if report.StdDev, err = stats.StandardDeviation(errs); err != nil {
		return ErrorReport{}, fmt.Errorf("failed to compute error deviation: %w", err)
	}
	return report, nil
}
