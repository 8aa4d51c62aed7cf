package solver

import (
	"fmt"
	"math"

	"github.com/hakniyev/cauchysolver/internal/laguerre"
)

// DefaultMaxIterations caps the Picard loop when Config.MaxIterations is 0.
const DefaultMaxIterations = 100

// Config holds the parameters of one solve. It is validated once by
// Configure and never changes afterwards.
type Config struct {
	// N is the quadrature order: the degree of the Laguerre polynomial whose
	// roots serve as nodes.
	N int `json:"n"`

	// Alpha is the generalized Laguerre exponent of the quadrature rule.
	Alpha float64 `json:"alpha"`

	// NPart is the truncation order of the basis expansion; the coefficient
	// vector has NPart+1 entries.
	NPart int `json:"nPart"`

	// A is the rate of the change of variables x = 1 - e^{-A t}.
	A float64 `json:"a"`

	// B scales the argument of the basis functions.
	B float64 `json:"b"`

	// Epsilon is the bisection precision for the quadrature nodes.
	Epsilon float64 `json:"epsilon"`

	// Threshold is the Euclidean distance between successive coefficient
	// vectors at which the iteration is considered converged.
	Threshold float64 `json:"threshold"`

	// Y0 is the initial value of the unknown function.
	Y0 float64 `json:"y0"`

	// MaxIterations bounds the number of Picard steps. 0 selects
	// DefaultMaxIterations.
	MaxIterations int `json:"maxIterations,omitempty"`
}

// DefaultConfig returns the parameters used throughout the reference runs.
func DefaultConfig() Config {
	return Config{
		N:             20,
		Alpha:         0,
		NPart:         15,
		A:             1,
		B:             1,
		Epsilon:       laguerre.DefaultEpsilon,
		Threshold:     1e-3,
		Y0:            1,
		MaxIterations: DefaultMaxIterations,
	}
}

// Validate checks every parameter and returns the first violation wrapped in
// ErrInvalidConfiguration.
func (c Config) Validate() error {
	switch {
	case c.N < 1:
		return invalid("n must be at least 1, got %d", c.N)
	case c.NPart < 0:
		return invalid("nPart must be non-negative, got %d", c.NPart)
	case !(c.Epsilon > 0):
		return invalid("epsilon must be positive, got %g", c.Epsilon)
	case !(c.Threshold > 0):
		return invalid("threshold must be positive, got %g", c.Threshold)
	case !(c.Alpha > -1) || math.IsInf(c.Alpha, 0):
		return invalid("alpha must be finite and greater than -1, got %g", c.Alpha)
	case !isFinite(c.A) || !(c.A > 0):
		return invalid("a must be finite and positive, got %g", c.A)
	case !isFinite(c.B) || !(c.B > 0):
		return invalid("b must be finite and positive, got %g", c.B)
	case !isFinite(c.Y0):
		return invalid("y0 must be finite, got %g", c.Y0)
	case c.MaxIterations < 0:
		return invalid("maxIterations must be non-negative, got %d", c.MaxIterations)
	}
	return nil
}

func (c Config) maxIterations() int {
	if c.MaxIterations == 0 {
		return DefaultMaxIterations
	}
	return c.MaxIterations
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfiguration}, args...)...)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
