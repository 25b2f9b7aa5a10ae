package graph

import (
	"errors"
	"fmt"
)

// ArticleNamespace is the only namespace kept by the pipeline.
const ArticleNamespace = 0

// ErrInvalidGraph is returned when the graph arrays violate the CSR invariants.
var ErrInvalidGraph = errors.New("invalid graph")

// Range is a half-open [Start, End) span into one of the edge arrays.
type Range struct {
	Start uint32
	End   uint32
}

// Len returns the number of edges in the range.
func (r Range) Len() uint32 { return r.End - r.Start }

// Node is one encyclopedia page.
type Node struct {
	ID            uint32 // external page id, distinct from the node index
	NS            int32
	Title         string
	IsRedirect    bool // exactly one forward edge: the alias target
	IsDateRelated bool
	IsListArticle bool
	Fwd           Range // outgoing neighbors in FwdEdges
	Bwd           Range // incoming neighbors in BwdEdges
}

// Graph is the page link graph in CSR (Compressed Sparse Row) form, for both
// directions. It is frozen at load time: nothing mutates Nodes, FwdEdges or
// BwdEdges afterwards, so a single *Graph is shared by all concurrent queries
// without locking.
type Graph struct {
	Nodes    []Node
	FwdEdges []uint32 // node indices; Nodes[i].Fwd selects node i's slice
	BwdEdges []uint32 // node indices; Nodes[i].Bwd selects node i's slice
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() uint32 { return uint32(len(g.Nodes)) }

// Forward returns the indices of the pages u links to.
func (g *Graph) Forward(u uint32) []uint32 {
	r := g.Nodes[u].Fwd
	return g.FwdEdges[r.Start:r.End:r.End]
}

// Backward returns the indices of the pages linking to u.
func (g *Graph) Backward(u uint32) []uint32 {
	r := g.Nodes[u].Bwd
	return g.BwdEdges[r.Start:r.End:r.End]
}

// RedirectTarget returns the single alias target of a redirect node. The
// target is not followed further: redirect chains are not resolved.
func (g *Graph) RedirectTarget(u uint32) (uint32, bool) {
	n := &g.Nodes[u]
	if !n.IsRedirect || n.Fwd.Len() == 0 {
		return u, false
	}
	return g.FwdEdges[n.Fwd.Start], true
}

// Validate checks the CSR invariants. Node ranges tile each edge array in
// node order, every edge points at an existing node, every redirect has a
// target, and each backward slice lists exactly the nodes linking to it in
// ascending order.
func (g *Graph) Validate() error {
	numNodes := uint32(len(g.Nodes))
	numFwd := uint32(len(g.FwdEdges))
	numBwd := uint32(len(g.BwdEdges))

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Fwd.Start > n.Fwd.End || n.Fwd.End > numFwd {
			return fmt.Errorf("%w: node %d forward range [%d,%d) outside %d edges", ErrInvalidGraph, i, n.Fwd.Start, n.Fwd.End, numFwd)
		}
		if n.Bwd.Start > n.Bwd.End || n.Bwd.End > numBwd {
			return fmt.Errorf("%w: node %d backward range [%d,%d) outside %d edges", ErrInvalidGraph, i, n.Bwd.Start, n.Bwd.End, numBwd)
		}
		if n.IsRedirect && n.Fwd.Len() == 0 {
			return fmt.Errorf("%w: redirect node %d (%q) has no target", ErrInvalidGraph, i, n.Title)
		}
	}
	for i, h := range g.FwdEdges {
		if h >= numNodes {
			return fmt.Errorf("%w: FwdEdges[%d]=%d >= NumNodes=%d", ErrInvalidGraph, i, h, numNodes)
		}
	}
	for i, h := range g.BwdEdges {
		if h >= numNodes {
			return fmt.Errorf("%w: BwdEdges[%d]=%d >= NumNodes=%d", ErrInvalidGraph, i, h, numNodes)
		}
	}

	var fwdNext, bwdNext uint32
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Fwd.Start != fwdNext {
			return fmt.Errorf("%w: node %d forward range starts at %d, want %d", ErrInvalidGraph, i, n.Fwd.Start, fwdNext)
		}
		if n.Bwd.Start != bwdNext {
			return fmt.Errorf("%w: node %d backward range starts at %d, want %d", ErrInvalidGraph, i, n.Bwd.Start, bwdNext)
		}
		fwdNext, bwdNext = n.Fwd.End, n.Bwd.End
	}
	if fwdNext != numFwd || bwdNext != numBwd {
		return fmt.Errorf("%w: ranges cover %d/%d forward and %d/%d backward edges", ErrInvalidGraph, fwdNext, numFwd, bwdNext, numBwd)
	}

	// Forward sources arrive in ascending order, so each head's backward
	// slice is consumed front to back.
	cursor := make([]uint32, numNodes)
	for v := range g.Nodes {
		cursor[v] = g.Nodes[v].Bwd.Start
	}
	for u := range numNodes {
		for _, v := range g.Forward(u) {
			c := cursor[v]
			if c == g.Nodes[v].Bwd.End || g.BwdEdges[c] != u {
				return fmt.Errorf("%w: forward edge %d->%d has no matching backward edge", ErrInvalidGraph, u, v)
			}
			cursor[v]++
		}
	}
	for v := range g.Nodes {
		if cursor[v] != g.Nodes[v].Bwd.End {
			return fmt.Errorf("%w: node %d has %d backward edges without a forward edge", ErrInvalidGraph, v, g.Nodes[v].Bwd.End-cursor[v])
		}
	}
	return nil
}
