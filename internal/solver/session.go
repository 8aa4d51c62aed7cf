package solver

import "math"

// Session is one iterate of the Picard loop. Sessions are values: Advance
// returns a new one and never mutates its input.
type Session struct {
	// Iteration is the number of Picard steps taken; 0 for the seed.
	Iteration int `json:"iteration"`

	// Coefficients is the expansion c_0..c_NPart.
	Coefficients []float64 `json:"coefficients"`

	// Distance is the Euclidean distance to the previous iterate. It is 0
	// for the seed.
	Distance float64 `json:"distance"`
}

// Converged reports whether the session came out of a step whose distance
// met threshold.
func (s Session) Converged(threshold float64) bool {
	return s.Iteration > 0 && s.Distance <= threshold
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	s.Coefficients = append([]float64(nil), s.Coefficients...)
	return s
}

// Distance returns the Euclidean distance between two vectors of equal
// length.
func Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
