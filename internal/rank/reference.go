package rank

import (
	"context"
	"math"

	"github.com/papapumpkin/pulsar/internal/network"
	"github.com/papapumpkin/pulsar/internal/pageid"
)

// SingleThreaded is the straightforward serial ranker. It is slower than
// MultiThreaded but simple enough to serve as a correctness oracle.
type SingleThreaded struct{}

var _ Ranker = SingleThreaded{}

// Reference returns the serial ranker.
func Reference() SingleThreaded { return SingleThreaded{} }

// Name returns "SingleThreaded".
func (SingleThreaded) Name() string { return "SingleThreaded" }

// Compute runs PageRank serially with the same update rule and convergence
// test as MultiThreaded. IDs are generated on a single goroutine.
//
// Importance flows along links: a page linked to by many high-rank pages
// receives a higher rank. Dangling pages redistribute their rank uniformly.
func (SingleThreaded) Compute(ctx context.Context, net *network.Network, opts Options) ([]PageRank, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := net.GenerateIDs(ctx, 1); err != nil {
		return nil, err
	}
	n := net.Size()
	if n == 0 {
		return []PageRank{}, nil
	}

	nf := float64(n)
	base := (1.0 - opts.Alpha) / nf

	rank := make(map[pageid.ID]float64, n)
	numLinks := make(map[pageid.ID]int, n)
	var dangling []pageid.ID
	// incoming maps a page to the sources linking to it, one entry per link.
	incoming := make(map[pageid.ID][]pageid.ID, n)
	for _, p := range net.Pages() {
		rank[p.ID()] = 1.0 / nf
		numLinks[p.ID()] = len(p.LinkIDs())
		if len(p.LinkIDs()) == 0 {
			dangling = append(dangling, p.ID())
		}
		for _, target := range p.LinkIDs() {
			incoming[target] = append(incoming[target], p.ID())
		}
	}
	for target := range incoming {
		if _, ok := rank[target]; !ok {
			return nil, ErrUnknownLink
		}
	}

	last := math.Inf(1)
	for iter := 1; iter <= opts.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var danglingSum float64
		for _, id := range dangling {
			danglingSum += rank[id]
		}
		danglingSum *= opts.Alpha

		newRank := make(map[pageid.ID]float64, n)
		var difference float64
		for id := range rank {
			r := danglingSum/nf + base
			for _, src := range incoming[id] {
				r += opts.Alpha * rank[src] / float64(numLinks[src])
			}
			newRank[id] = r
			difference += math.Abs(rank[id] - r)
		}

		rank = newRank
		last = difference
		opts.observe(IterationStats{Iteration: iter, Difference: difference, DangleSum: danglingSum})
		if difference < opts.Tolerance {
			out := make([]PageRank, 0, n)
			for _, p := range net.Pages() {
				out = append(out, PageRank{ID: p.ID(), Rank: rank[p.ID()]})
			}
			if len(out) != len(rank) {
				return nil, ErrInvariantViolation
			}
			return out, nil
		}
	}
	return nil, &NonConvergenceError{Iterations: opts.Iterations, Difference: last, Tolerance: opts.Tolerance}
}
