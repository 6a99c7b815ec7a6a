// Package rank computes PageRank over a network. The multi-threaded ranker
// keeps a persistent pool of workers for the whole computation and moves
// them through four barrier-separated phases per iteration, with a
// controller doing the serial reductions between phases. A single-threaded
// reference ranker computes the same fixed point and serves as an oracle.
package rank

import (
	"context"
	"fmt"

	"github.com/papapumpkin/pulsar/internal/network"
	"github.com/papapumpkin/pulsar/internal/pageid"
)

// PageRank pairs a page ID with its rank.
type PageRank struct {
	ID   pageid.ID
	Rank float64
}

// Ranker computes ranks for every page of a network.
type Ranker interface {
	Compute(ctx context.Context, net *network.Network, opts Options) ([]PageRank, error)
	Name() string
}

// IterationStats describes one completed iteration.
type IterationStats struct {
	Iteration  int     // 1-based
	Difference float64 // sum of |previous - current| over all pages
	DangleSum  float64 // alpha-scaled rank mass held by dangling pages
}

// Options configures a computation.
type Options struct {
	Alpha      float64 // damping factor in (0, 1)
	Iterations int     // iteration budget; 0 always fails to converge
	Tolerance  float64 // convergence threshold on the summed difference

	// OnIteration, if set, is called after every iteration from the
	// goroutine that called Compute.
	OnIteration func(IterationStats)
}

// DefaultOptions returns damping 0.85, tolerance 1e-6 and 100 iterations.
func DefaultOptions() Options {
	return Options{
		Alpha:      0.85,
		Iterations: 100,
		Tolerance:  1e-6,
	}
}

// Validate checks that the options describe a well-defined computation.
func (o Options) Validate() error {
	if !(o.Alpha > 0 && o.Alpha < 1) {
		return fmt.Errorf("%w: alpha %g not in (0, 1)", ErrInvalidOptions, o.Alpha)
	}
	if !(o.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance %g must be positive", ErrInvalidOptions, o.Tolerance)
	}
	if o.Iterations < 0 {
		return fmt.Errorf("%w: iterations %d must not be negative", ErrInvalidOptions, o.Iterations)
	}
	return nil
}

func (o Options) observe(s IterationStats) {
	if o.OnIteration != nil {
		o.OnIteration(s)
	}
}
