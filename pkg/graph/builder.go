package graph

import (
	"sort"

	"wiki_router/pkg/dump"
)

// Build creates the bidirectional CSR graph from scraped pages. Node indices
// follow page order. Duplicate links, self-links and links to ids not present
// in pages are dropped, and a redirect whose target is missing is demoted to a
// plain page so that every redirect keeps exactly one forward edge.
func Build(pages []dump.Page) *Graph {
	if len(pages) == 0 {
		return &Graph{}
	}

	// Step 1: Map external page ids to dense node indices.
	idToIndex := make(map[uint32]uint32, len(pages))
	for i := range pages {
		idToIndex[pages[i].ID] = uint32(i)
	}
	numNodes := uint32(len(pages))

	// Step 2: Build compact edge list with remapped indices.
	type compactEdge struct {
		from uint32
		to   uint32
		rank uint32 // position in the page's link list
	}

	nodes := make([]Node, numNodes)
	var compact []compactEdge
	lastFrom := make([]uint32, numNodes) // u+1 of the last page linking here
	for i := range pages {
		p := &pages[i]
		u := uint32(i)
		nodes[u] = Node{
			ID:            p.ID,
			NS:            p.NS,
			Title:         p.Title,
			IsRedirect:    p.IsRedirect,
			IsDateRelated: p.IsDateRelated,
			IsListArticle: p.IsListArticle,
		}

		var kept uint32
		for _, id := range p.Links {
			v, ok := idToIndex[id]
			if !ok || v == u || lastFrom[v] == u+1 {
				continue
			}
			lastFrom[v] = u + 1
			compact = append(compact, compactEdge{from: u, to: v, rank: kept})
			kept++
			if p.IsRedirect {
				break
			}
		}
		if p.IsRedirect && kept == 0 {
			nodes[u].IsRedirect = false
		}
	}

	// Step 3: Sort edges by source node, keeping link order within a source
	// so that a redirect's target is its first forward edge.
	sort.Slice(compact, func(i, j int) bool {
		if compact[i].from != compact[j].from {
			return compact[i].from < compact[j].from
		}
		return compact[i].rank < compact[j].rank
	})

	// Step 4: Forward CSR via counting.
	numEdges := uint32(len(compact))
	fwdFirstOut := make([]uint32, numNodes+1)
	bwdFirstOut := make([]uint32, numNodes+1)
	fwdEdges := make([]uint32, numEdges)
	for i, e := range compact {
		fwdEdges[i] = e.to
		fwdFirstOut[e.from+1]++
		bwdFirstOut[e.to+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		fwdFirstOut[i] += fwdFirstOut[i-1]
		bwdFirstOut[i] += bwdFirstOut[i-1]
	}

	// Step 5: Backward CSR by placing each edge at its head's slot. Sources
	// arrive in ascending order, so each backward slice is sorted.
	bwdEdges := make([]uint32, numEdges)
	pos := make([]uint32, numNodes)
	copy(pos, bwdFirstOut[:numNodes])
	for _, e := range compact {
		bwdEdges[pos[e.to]] = e.from
		pos[e.to]++
	}

	for u := range nodes {
		nodes[u].Fwd = Range{Start: fwdFirstOut[u], End: fwdFirstOut[u+1]}
		nodes[u].Bwd = Range{Start: bwdFirstOut[u], End: bwdFirstOut[u+1]}
	}

	return &Graph{
		Nodes:    nodes,
		FwdEdges: fwdEdges,
		BwdEdges: bwdEdges,
	}
}
