package rank

import (
	"fmt"

	"github.com/papapumpkin/pulsar/internal/network"
	"github.com/papapumpkin/pulsar/internal/pageid"
)

// edge is a link from page src to page dst, as page indices.
type edge struct {
	src int
	dst int
}

// graph holds the read-only inputs shared by every worker. All slices are
// indexed by page position in the network and never change after build.
type graph struct {
	ids      []pageid.ID
	numLinks []int
	dangling []int
	edges    []edge
}

// buildGraph flattens a network whose IDs have been generated.
func buildGraph(net *network.Network) (*graph, error) {
	pages := net.Pages()
	g := &graph{
		ids:      make([]pageid.ID, len(pages)),
		numLinks: make([]int, len(pages)),
	}
	index := make(map[pageid.ID]int, len(pages))
	for i, p := range pages {
		g.ids[i] = p.ID()
		index[p.ID()] = i
	}

	for src, p := range pages {
		links := p.LinkIDs()
		g.numLinks[src] = len(links)
		if len(links) == 0 {
			g.dangling = append(g.dangling, src)
			continue
		}
		for _, target := range links {
			dst, ok := index[target]
			if !ok {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownLink, p.ID().Short(12), target.Short(12))
			}
			g.edges = append(g.edges, edge{src: src, dst: dst})
		}
	}
	return g, nil
}

func (g *graph) size() int { return len(g.ids) }

// result pairs ranks with IDs and checks the result covers the network
// exactly once per page.
func (g *graph) result(networkSize int, ranks []float64) ([]PageRank, error) {
	if len(ranks) != networkSize || len(g.ids) != networkSize {
		return nil, fmt.Errorf("%w: result size %d for network size %d", ErrInvariantViolation, len(ranks), networkSize)
	}
	seen := make(map[pageid.ID]struct{}, len(g.ids))
	out := make([]PageRank, len(g.ids))
	for i, id := range g.ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: page %s appears twice", ErrInvariantViolation, id.Short(12))
		}
		seen[id] = struct{}{}
		out[i] = PageRank{ID: id, Rank: ranks[i]}
	}
	return out, nil
}
