// Package barrier provides a reusable two-role rendezvous: a fixed number of
// worker goroutines meet at the barrier, and a single controller goroutine
// observes that they have all arrived, does serial work while they are
// parked, and then releases them into the next phase.
//
// The barrier keeps a generation counter so a worker that is released and
// quickly arrives again is counted toward the next rendezvous, never the one
// it already completed.
package barrier

import "sync"

// Barrier coordinates parties workers with one controller. The zero value is
// not usable; create one with New.
type Barrier struct {
	mu sync.Mutex
	// arrived is signalled when the last worker of a generation arrives.
	arrived *sync.Cond
	// released is broadcast by GoOn.
	released *sync.Cond

	parties    int
	waiting    int
	generation uint64

	controllerWaiting bool
	threadsWaiting    bool
}

// New returns a barrier for the given number of worker parties. It panics if
// parties is not positive.
func New(parties int) *Barrier {
	if parties <= 0 {
		panic("barrier: parties must be positive")
	}
	b := &Barrier{parties: parties}
	b.arrived = sync.NewCond(&b.mu)
	b.released = sync.NewCond(&b.mu)
	return b
}

// Parties returns the number of workers the barrier waits for.
func (b *Barrier) Parties() int { return b.parties }

// Await is called by a worker. It blocks until every party has arrived for
// the current generation and the controller has called GoOn.
func (b *Barrier) Await() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.threadsWaiting = true
		if b.controllerWaiting {
			b.arrived.Signal()
		}
	}

	for b.generation == gen || b.threadsWaiting {
		b.released.Wait()
	}
}

// Wait is called by the controller. It blocks until all parties have arrived
// and returns while they are still parked, so the controller may read what
// they wrote. Each Wait must be followed by exactly one GoOn.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.threadsWaiting {
		b.controllerWaiting = true
		b.arrived.Wait()
	}
	b.controllerWaiting = false
}

// GoOn is called by the controller after its serial step. It releases every
// parked worker into the next generation.
func (b *Barrier) GoOn() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.threadsWaiting = false
	b.released.Broadcast()
}

// Generation returns the number of completed rendezvous.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
