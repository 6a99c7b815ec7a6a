package network

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/pulsar/internal/pageid"
)

// GenerateIDs assigns an ID to every page using up to workers goroutines,
// then resolves each page's links to target IDs. Every ID is generated
// before any link is resolved. Calling GenerateIDs again after it has
// succeeded is a no-op.
func (n *Network) GenerateIDs(ctx context.Context, workers int) error {
	if n.generated {
		return nil
	}
	if n.gen == nil {
		return fmt.Errorf("network: no ID generator configured")
	}
	workers = max(1, min(workers, len(n.pages)))

	ids := make([]pageid.ID, len(n.pages))
	var next atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= len(n.pages) {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				p := n.pages[i]
				id, err := n.gen.Generate(gctx, []byte(p.Content))
				if err != nil {
					return fmt.Errorf("network: generate ID for %q: %w", p.Name, err)
				}
				ids[i] = id
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	owner := make(map[pageid.ID]string, len(ids))
	for i, id := range ids {
		if prev, dup := owner[id]; dup {
			return fmt.Errorf("%w: %q and %q both hash to %s", ErrDuplicateID, prev, n.pages[i].Name, id.Short(12))
		}
		owner[id] = n.pages[i].Name
	}

	for i, p := range n.pages {
		p.id = ids[i]
	}
	for _, p := range n.pages {
		p.linkIDs = make([]pageid.ID, len(p.Links))
		for j, link := range p.Links {
			p.linkIDs[j] = n.pages[n.byName[link]].id
		}
	}
	n.generated = true
	return nil
}
