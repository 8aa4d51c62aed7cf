package solver

import (
	"math"
	"testing"
)

func TestConvergenceTracker(t *testing.T) {
	tests := []struct {
		name      string
		config    ConvergenceConfig
		distances []float64
		want      []Verdict
	}{
		{
			name:      "converges",
			config:    ConvergenceConfig{Threshold: 0.1, MaxIterations: 10},
			distances: []float64{1, 0.5, 0.2, 0.05},
			want:      []Verdict{Continue, Continue, Continue, Converged},
		},
		{
			name:      "threshold is inclusive",
			config:    ConvergenceConfig{Threshold: 0.1, MaxIterations: 10},
			distances: []float64{0.1},
			want:      []Verdict{Converged},
		},
		{
			name:      "exhausts budget",
			config:    ConvergenceConfig{Threshold: 0.1, MaxIterations: 3},
			distances: []float64{1, 0.9, 0.8},
			want:      []Verdict{Continue, Continue, Exhausted},
		},
		{
			name:      "diverges",
			config:    ConvergenceConfig{Threshold: 0.1, MaxIterations: 10, DivergencePatience: 2},
			distances: []float64{1, 2, 1.5, 3, 4},
			want:      []Verdict{Continue, Continue, Continue, Continue, Diverged},
		},
		{
			name:      "divergence check disabled",
			config:    ConvergenceConfig{Threshold: 0.1, MaxIterations: 5},
			distances: []float64{1, 2, 4, 8},
			want:      []Verdict{Continue, Continue, Continue, Continue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewConvergenceTracker(tt.config)
			for i, d := range tt.distances {
				if got := tracker.Update(d); got != tt.want[i] {
					t.Errorf("step %d: got %s, want %s", i+1, got, tt.want[i])
				}
			}
			if tracker.Steps() != len(tt.distances) {
				t.Errorf("Steps() = %d, want %d", tracker.Steps(), len(tt.distances))
			}
		})
	}
}

func TestConvergenceTrackerHistoryAndReset(t *testing.T) {
	tracker := NewConvergenceTracker(ConvergenceConfig{Threshold: 0.01, MaxIterations: 10})
	tracker.Update(0.5)
	tracker.Update(0.25)

	history := tracker.History()
	if len(history) != 2 || history[0] != 0.5 || history[1] != 0.25 {
		t.Errorf("History() = %v, want [0.5 0.25]", history)
	}
	history[0] = 99
	if tracker.History()[0] != 0.5 {
		t.Error("History() must return a copy")
	}
	if tracker.Best() != 0.25 {
		t.Errorf("Best() = %f, want 0.25", tracker.Best())
	}

	tracker.Reset()
	if tracker.Steps() != 0 || !math.IsInf(tracker.Best(), 1) {
		t.Errorf("Reset() left steps=%d best=%f", tracker.Steps(), tracker.Best())
	}
}

func TestVerdictString(t *testing.T) {
	for v, want := range map[Verdict]string{
		Continue:    "continue",
		Converged:   "converged",
		Exhausted:   "exhausted",
		Diverged:    "diverged",
		Verdict(42): "unknown",
	} {
		if got := v.String(); got != want {
			t.Errorf("Verdict(%d).String() = %q, want %q", v, got, want)
		}
	}
}
