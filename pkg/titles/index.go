// Package titles resolves page titles to node indices.
package titles

import (
	"sort"
	"strings"

	"wiki_router/pkg/dump"
	"wiki_router/pkg/graph"
)

// Item describes one prefix match.
type Item struct {
	Index         uint32
	ID            uint32
	Title         string
	IsRedirect    bool
	RedirectIndex uint32 // valid when IsRedirect
	RedirectID    uint32
	RedirectTitle string
	ForwardLinks  uint32
	BackwardLinks uint32
}

// LinkCount is the total number of links touching the page.
func (it Item) LinkCount() uint32 { return it.ForwardLinks + it.BackwardLinks }

type entry struct {
	folded string
	index  uint32
}

// Index is built once from a graph and is read-only afterwards.
type Index struct {
	g      *graph.Graph
	exact  map[string]uint32
	sorted []entry // by folded title, then index
}

// New builds the exact and prefix indexes for g.
func New(g *graph.Graph) *Index {
	ix := &Index{
		g:      g,
		exact:  make(map[string]uint32, len(g.Nodes)),
		sorted: make([]entry, len(g.Nodes)),
	}
	for i := range g.Nodes {
		title := g.Nodes[i].Title
		if _, dup := ix.exact[title]; !dup {
			ix.exact[title] = uint32(i)
		}
		ix.sorted[i] = entry{folded: strings.ToLower(title), index: uint32(i)}
	}
	sort.Slice(ix.sorted, func(a, b int) bool {
		if ix.sorted[a].folded != ix.sorted[b].folded {
			return ix.sorted[a].folded < ix.sorted[b].folded
		}
		return ix.sorted[a].index < ix.sorted[b].index
	})
	return ix
}

// Len returns the number of indexed titles.
func (ix *Index) Len() int { return len(ix.sorted) }

// Exact resolves a title to a node index. The title is tried verbatim first,
// then in canonical form (first letter upper-cased, underscores as spaces).
func (ix *Index) Exact(title string) (uint32, bool) {
	if idx, ok := ix.exact[title]; ok {
		return idx, true
	}
	idx, ok := ix.exact[dump.NormalizeTitle(title)]
	return idx, ok
}

// Prefix returns up to limit pages whose title starts with prefix, compared
// case-insensitively, in folded-title order.
func (ix *Index) Prefix(prefix string, limit int) []Item {
	if limit <= 0 {
		return nil
	}
	folded := strings.ToLower(prefix)
	lo := sort.Search(len(ix.sorted), func(i int) bool {
		return ix.sorted[i].folded >= folded
	})

	var items []Item
	for i := lo; i < len(ix.sorted) && len(items) < limit; i++ {
		if !strings.HasPrefix(ix.sorted[i].folded, folded) {
			break
		}
		items = append(items, ix.Describe(ix.sorted[i].index))
	}
	return items
}

// Describe summarizes the node at index i.
func (ix *Index) Describe(i uint32) Item {
	n := &ix.g.Nodes[i]
	it := Item{
		Index:         i,
		ID:            n.ID,
		Title:         n.Title,
		IsRedirect:    n.IsRedirect,
		ForwardLinks:  n.Fwd.Len(),
		BackwardLinks: n.Bwd.Len(),
	}
	if target, ok := ix.g.RedirectTarget(i); ok {
		t := &ix.g.Nodes[target]
		it.RedirectIndex = target
		it.RedirectID = t.ID
		it.RedirectTitle = t.Title
	}
	return it
}
