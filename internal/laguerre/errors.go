package laguerre

import "errors"

// Sentinel errors returned by the kernel. Callers match them with errors.Is;
// context is attached with fmt.Errorf("...: %w", Err...).
var (
	// ErrInvalidConfiguration is returned when a numeric parameter violates
	// its precondition (non-positive epsilon, negative degree, ...).
	ErrInvalidConfiguration = errors.New("laguerre: invalid configuration")

	// ErrBracketingFailure is returned when the polynomial has the same sign
	// at both ends of a search interval.
	ErrBracketingFailure = errors.New("laguerre: interval endpoints do not bracket a root")
)
