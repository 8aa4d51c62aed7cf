package solver

import (
	"log/slog"
	"math"
)

// ConvergenceConfig defines when a Picard iteration stops.
type ConvergenceConfig struct {
	// Threshold is the distance between successive coefficient vectors at
	// or below which the iteration has converged.
	Threshold float64

	// MaxIterations is the step budget.
	MaxIterations int

	// DivergencePatience is the number of consecutive steps with a growing
	// distance after which the iteration is abandoned. 0 disables the check.
	DivergencePatience int
}

// Verdict is the outcome of one ConvergenceTracker update.
type Verdict int

const (
	// Continue means another step is needed.
	Continue Verdict = iota
	// Converged means the last distance met the threshold.
	Converged
	// Exhausted means the step budget ran out.
	Exhausted
	// Diverged means the distance grew for DivergencePatience steps in a row.
	Diverged
)

func (v Verdict) String() string {
	switch v {
	case Continue:
		return "continue"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Diverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// ConvergenceTracker records the distance history of an iteration and
// decides when to stop.
type ConvergenceTracker struct {
	config  ConvergenceConfig
	history []float64
	best    float64 // Smallest distance seen
	growing int     // Consecutive steps with a larger distance than the previous one
}

// NewConvergenceTracker creates a tracker with the given config.
func NewConvergenceTracker(config ConvergenceConfig) *ConvergenceTracker {
	return &ConvergenceTracker{
		config: config,
		best:   math.Inf(1),
	}
}

// Update records the distance produced by one step.
func (c *ConvergenceTracker) Update(distance float64) Verdict {
	c.history = append(c.history, distance)
	step := len(c.history)

	if distance < c.best {
		c.best = distance
	}

	if distance <= c.config.Threshold {
		slog.Debug("Iteration converged", "step", step, "distance", distance, "threshold", c.config.Threshold)
		return Converged
	}

	if step > 1 && distance > c.history[step-2] {
		c.growing++
	} else {
		c.growing = 0
	}

	if c.config.DivergencePatience > 0 && c.growing >= c.config.DivergencePatience {
		slog.Debug("Iteration diverging",
			"step", step,
			"distance", distance,
			"growing_steps", c.growing,
		)
		return Diverged
	}

	if step >= c.config.MaxIterations {
		slog.Debug("Iteration budget exhausted", "step", step, "distance", distance, "best", c.best)
		return Exhausted
	}

	return Continue
}

// Best returns the smallest distance seen so far.
func (c *ConvergenceTracker) Best() float64 {
	return c.best
}

// History returns a copy of the distance history.
func (c *ConvergenceTracker) History() []float64 {
	return append([]float64{}, c.history...)
}

// Steps returns the number of recorded updates.
func (c *ConvergenceTracker) Steps() int {
	return len(c.history)
}

// Reset clears the tracker's state.
func (c *ConvergenceTracker) Reset() {
	c.history = nil
	c.best = math.Inf(1)
	c.growing = 0
}
