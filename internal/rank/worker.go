package rank

import (
	"math"

	"github.com/papapumpkin/pulsar/internal/partition"
)

// worker is one member of the persistent pool. It owns index ranges into
// the pages, edges and dangling-node arrays, plus a private accumulator for
// edge contributions that only the controller merges.
type worker struct {
	c *controller

	pages    partition.Range
	edges    partition.Range
	dangling partition.Range

	// acc is a dense per-page accumulator; touched lists the indices with a
	// contribution this iteration, and seen marks them.
	acc     []float64
	seen    []bool
	touched []int

	out outputs
}

// cacheLine is the assumed size of a CPU cache line.
const cacheLine = 64

// outputs holds the scalars the controller reads after the matching phase.
// The padding keeps them off the cache lines of the worker's other fields
// and of neighbouring allocations.
type outputs struct {
	_      [cacheLine]byte
	dangle float64
	diff   float64
	_      [cacheLine - 16]byte
}

func newWorker(c *controller, pages, edges, dangling partition.Range) *worker {
	w := &worker{
		c:        c,
		pages:    pages,
		edges:    edges,
		dangling: dangling,
	}
	if !edges.Empty() {
		w.acc = make([]float64, c.g.size())
		w.seen = make([]bool, c.g.size())
	}
	return w
}

// loop runs cycles of four phases until the controller sets done. The
// first Await of a cycle is the gate where the controller observes all
// workers between iterations; done is checked right after it.
func (w *worker) loop() {
	b := w.c.barrier
	for {
		b.Await()
		if w.c.done.Load() {
			return
		}
		w.sumDangling()
		b.Await()
		w.assignBase()
		b.Await()
		w.accumulateEdges()
		b.Await()
		w.sumDifference()
	}
}

func (w *worker) sumDangling() {
	prev := w.c.previous()
	w.out.dangle = 0
	for _, p := range w.c.g.dangling[w.dangling.Start:w.dangling.End] {
		w.out.dangle += prev[p]
	}
}

func (w *worker) assignBase() {
	c := w.c
	cur := c.current()
	base := c.dangleSum/c.size + (1-c.opts.Alpha)/c.size
	for p := w.pages.Start; p < w.pages.End; p++ {
		cur[p] = base
	}
}

func (w *worker) accumulateEdges() {
	for _, dst := range w.touched {
		w.acc[dst] = 0
		w.seen[dst] = false
	}
	w.touched = w.touched[:0]

	g := w.c.g
	prev := w.c.previous()
	alpha := w.c.opts.Alpha
	for _, e := range g.edges[w.edges.Start:w.edges.End] {
		if !w.seen[e.dst] {
			w.seen[e.dst] = true
			w.touched = append(w.touched, e.dst)
		}
		w.acc[e.dst] += alpha * prev[e.src] / float64(g.numLinks[e.src])
	}
}

func (w *worker) sumDifference() {
	prev := w.c.previous()
	cur := w.c.current()
	w.out.diff = 0
	for p := w.pages.Start; p < w.pages.End; p++ {
		w.out.diff += math.Abs(prev[p] - cur[p])
	}
}
