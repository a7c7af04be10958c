package pricing

import "github.com/pkg/errors"

var (
	// ErrInvalidInput is returned when a precondition of a public operation is violated.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNonConvergence is returned when an iterative method exhausts its iteration budget.
	ErrNonConvergence = errors.New("implied volatility did not converge")
)

// IsInvalidInput reports whether err originates from a precondition violation.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNonConvergence reports whether err originates from an exhausted solver.
func IsNonConvergence(err error) bool {
	return errors.Is(err, ErrNonConvergence)
}
