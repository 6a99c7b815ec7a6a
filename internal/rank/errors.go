package rank

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by rankers.
var (
	// ErrNonConvergence indicates the iteration budget ran out before the
	// summed difference fell below the tolerance.
	ErrNonConvergence = errors.New("rank did not converge")
	// ErrInvariantViolation indicates the computed result does not cover the
	// network exactly once per page.
	ErrInvariantViolation = errors.New("rank invariant violated")
	// ErrInvalidOptions indicates alpha, tolerance, iterations or the thread
	// count are out of range.
	ErrInvalidOptions = errors.New("invalid rank options")
	// ErrUnknownLink indicates a page links to an ID that is not in the network.
	ErrUnknownLink = errors.New("link to page outside the network")
)

// NonConvergenceError reports an exhausted iteration budget. No partial
// result accompanies it.
type NonConvergenceError struct {
	Iterations int     // iterations performed
	Difference float64 // summed difference of the last iteration; +Inf if none ran
	Tolerance  float64
}

// Error returns a human-readable description of the failure.
func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("rank: no convergence within %d iterations (difference %g, tolerance %g)",
		e.Iterations, e.Difference, e.Tolerance)
}

// Is reports whether target is ErrNonConvergence.
func (e *NonConvergenceError) Is(target error) bool {
	return target == ErrNonConvergence
}
