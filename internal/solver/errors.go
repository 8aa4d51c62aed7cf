package solver

import (
	"errors"

	"github.com/hakniyev/cauchysolver/internal/laguerre"
)

var (
	// ErrInvalidConfiguration is returned by Configure and by operations
	// given arguments outside their domain.
	ErrInvalidConfiguration = laguerre.ErrInvalidConfiguration

	// ErrBracketingFailure reports that root isolation lost its bracket.
	ErrBracketingFailure = laguerre.ErrBracketingFailure

	// ErrNonConvergence is returned when the Picard iteration exhausts its
	// iteration budget or produces non-finite coefficients.
	ErrNonConvergence = errors.New("solver: iteration did not converge")
)
