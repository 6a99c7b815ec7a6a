// Package network models the ordered, immutable page network that pulsar
// ranks. Pages refer to each other by name; content-addressed IDs are
// generated once for every page, after which links resolve to target IDs.
package network

import (
	"fmt"

	"github.com/papapumpkin/pulsar/internal/pageid"
)

// Page is a single document in the network.
type Page struct {
	Name    string   // file-local handle; defaults to Content when empty
	Content string   // bytes hashed into the page ID; defaults to Name when empty
	Links   []string // names of pages this page links to

	id      pageid.ID
	linkIDs []pageid.ID
}

// ID returns the generated identifier, or "" before GenerateIDs has run.
func (p *Page) ID() pageid.ID { return p.id }

// LinkIDs returns the identifiers of the link targets, in link order. It is
// nil before GenerateIDs has run.
func (p *Page) LinkIDs() []pageid.ID { return p.linkIDs }

// Dangling reports whether the page has no outbound links.
func (p *Page) Dangling() bool { return len(p.Links) == 0 }

// Network is an ordered, fixed collection of pages together with the
// generator that assigns their IDs.
type Network struct {
	source    string
	pages     []*Page
	byName    map[string]int
	gen       pageid.Generator
	generated bool
}

// Stats summarises the shape of a network.
type Stats struct {
	Pages    int
	Links    int
	Dangling int
}

// New builds a network from pages. Page names must be unique and every link
// must name a page in the network. A page with no name is named by its
// content and a page with no content hashes its name. The pages are copied.
func New(gen pageid.Generator, pages ...Page) (*Network, error) {
	n := &Network{
		pages:  make([]*Page, 0, len(pages)),
		byName: make(map[string]int, len(pages)),
		gen:    gen,
	}
	for i := range pages {
		p := pages[i]
		if p.Name == "" {
			p.Name = p.Content
		}
		if p.Content == "" {
			p.Content = p.Name
		}
		if _, exists := n.byName[p.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePage, p.Name)
		}
		p.Links = append([]string(nil), p.Links...)
		p.id = ""
		p.linkIDs = nil
		n.byName[p.Name] = len(n.pages)
		n.pages = append(n.pages, &p)
	}
	for _, p := range n.pages {
		for _, link := range p.Links {
			if _, ok := n.byName[link]; !ok {
				return nil, fmt.Errorf("%w: %q links to %q", ErrUnknownLink, p.Name, link)
			}
		}
	}
	return n, nil
}

// Size returns the number of pages.
func (n *Network) Size() int { return len(n.pages) }

// Pages returns the pages in network order. Callers must not modify them.
func (n *Network) Pages() []*Page { return n.pages }

// Generator returns the generator used for page IDs.
func (n *Network) Generator() pageid.Generator { return n.gen }

// Generated reports whether every page has its ID.
func (n *Network) Generated() bool { return n.generated }

// Source returns the file the network was loaded from, if any.
func (n *Network) Source() string { return n.source }

// Page returns the page with the given name.
func (n *Network) Page(name string) (*Page, bool) {
	i, ok := n.byName[name]
	if !ok {
		return nil, false
	}
	return n.pages[i], true
}

// Stats returns page, link and dangling-node counts.
func (n *Network) Stats() Stats {
	s := Stats{Pages: len(n.pages)}
	for _, p := range n.pages {
		s.Links += len(p.Links)
		if p.Dangling() {
			s.Dangling++
		}
	}
	return s
}

// IDs returns the generated page IDs in network order.
func (n *Network) IDs() ([]pageid.ID, error) {
	if !n.generated {
		return nil, ErrNotGenerated
	}
	ids := make([]pageid.ID, len(n.pages))
	for i, p := range n.pages {
		ids[i] = p.id
	}
	return ids, nil
}
