package rank

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/papapumpkin/pulsar/internal/barrier"
	"github.com/papapumpkin/pulsar/internal/network"
	"github.com/papapumpkin/pulsar/internal/partition"
)

// MultiThreaded ranks a network with a persistent pool of worker goroutines.
type MultiThreaded struct {
	threads int
}

var _ Ranker = (*MultiThreaded)(nil)

// New returns a multi-threaded ranker that uses threads workers for both ID
// generation and ranking.
func New(threads int) *MultiThreaded {
	return &MultiThreaded{threads: threads}
}

// Name returns "MultiThreaded[<threads>]".
func (m *MultiThreaded) Name() string {
	return fmt.Sprintf("MultiThreaded[%d]", m.threads)
}

// Threads returns the worker count.
func (m *MultiThreaded) Threads() int { return m.threads }

// Compute generates page IDs, then iterates until the summed difference
// between successive rank vectors drops below opts.Tolerance. It returns a
// *NonConvergenceError if opts.Iterations is exhausted first. The context is
// observed between iterations only.
func (m *MultiThreaded) Compute(ctx context.Context, net *network.Network, opts Options) ([]PageRank, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if m.threads < 1 {
		return nil, fmt.Errorf("%w: threads %d must be positive", ErrInvalidOptions, m.threads)
	}
	if err := net.GenerateIDs(ctx, m.threads); err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	g, err := buildGraph(net)
	if err != nil {
		return nil, err
	}
	if g.size() == 0 {
		return []PageRank{}, nil
	}

	c := newController(g, m.threads, opts)
	ranks, err := c.run(ctx)
	if err != nil {
		return nil, err
	}
	return g.result(net.Size(), ranks)
}

// controller owns the shared state of one computation and drives the
// workers through their phases.
type controller struct {
	g    *graph
	opts Options
	size float64

	// ranks holds the previous and current vectors; prev selects which is
	// which. Both are swapped only while every worker is parked.
	ranks [2][]float64
	prev  int

	// dangleSum is written by the controller between phases 1 and 2 and
	// read by workers in phase 2.
	dangleSum float64

	barrier *barrier.Barrier
	done    atomic.Bool
	workers []*worker
	wg      sync.WaitGroup
}

func newController(g *graph, threads int, opts Options) *controller {
	n := g.size()
	c := &controller{
		g:       g,
		opts:    opts,
		size:    float64(n),
		barrier: barrier.New(threads),
	}
	c.ranks[0] = make([]float64, n)
	c.ranks[1] = make([]float64, n)
	uniform := 1.0 / c.size
	for i := range c.ranks[0] {
		c.ranks[0][i] = uniform
	}

	pages := partition.Split(n, threads)
	edges := partition.Split(len(g.edges), threads)
	dangling := partition.Split(len(g.dangling), threads)
	c.workers = make([]*worker, threads)
	for i := range c.workers {
		c.workers[i] = newWorker(c, pages[i], edges[i], dangling[i])
	}
	return c
}

func (c *controller) previous() []float64 { return c.ranks[c.prev] }

func (c *controller) current() []float64 { return c.ranks[1-c.prev] }

// run spawns the workers, iterates, and always shuts the pool down before
// returning. On success it returns the final rank vector.
func (c *controller) run(ctx context.Context) ([]float64, error) {
	c.start()
	defer c.stop()

	last := math.Inf(1)
	for it := 1; it <= c.opts.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats := c.iterate(it)
		c.opts.observe(stats)
		last = stats.Difference
		if stats.Difference < c.opts.Tolerance {
			return c.previous(), nil
		}
	}
	return nil, &NonConvergenceError{
		Iterations: c.opts.Iterations,
		Difference: last,
		Tolerance:  c.opts.Tolerance,
	}
}

// start launches one goroutine per worker and waits until all of them are
// parked at the cycle gate.
func (c *controller) start() {
	for _, w := range c.workers {
		c.wg.Add(1)
		go func(w *worker) {
			defer c.wg.Done()
			w.loop()
		}(w)
	}
	c.barrier.Wait()
}

// stop must only be called while every worker is parked at the cycle gate.
func (c *controller) stop() {
	c.done.Store(true)
	c.barrier.GoOn()
	c.wg.Wait()
}

// iterate runs the four phases of one iteration. Workers start and end it
// parked at the cycle gate. After it returns, previous() holds the ranks
// just computed.
func (c *controller) iterate(iteration int) IterationStats {
	c.dangleSum = 0

	// Phase 1: partial dangling sums.
	c.barrier.GoOn()
	c.barrier.Wait()
	var dangle float64
	for _, w := range c.workers {
		dangle += w.out.dangle
	}
	c.dangleSum = dangle * c.opts.Alpha

	// Phase 2: base rank for every page.
	c.barrier.GoOn()
	c.barrier.Wait()

	// Phase 3: edge contributions into private accumulators.
	c.barrier.GoOn()
	c.barrier.Wait()
	cur := c.current()
	for _, w := range c.workers {
		for _, dst := range w.touched {
			cur[dst] += w.acc[dst]
		}
	}

	// Phase 4: partial differences.
	c.barrier.GoOn()
	c.barrier.Wait()
	var diff float64
	for _, w := range c.workers {
		diff += w.out.diff
	}

	c.prev = 1 - c.prev
	return IterationStats{Iteration: iteration, Difference: diff, DangleSum: c.dangleSum}
}
