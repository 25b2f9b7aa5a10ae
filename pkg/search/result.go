package search

import (
	"time"

	"wiki_router/pkg/graph"
)

// ResultNode is a page on some shortest route.
type ResultNode struct {
	Index         uint32
	ID            uint32
	Title         string
	IsRedirect    bool
	IsDateRelated bool
	IsListArticle bool
	Distance      uint8 // hops from the start; redirects add nothing
}

// Edge is a link between two result pages, by external page id.
type Edge struct {
	From uint32
	To   uint32
}

// Result is the outcome of one query. Nodes and Edges together form the
// shortest-path DAG from start to end; they are empty when no route exists.
type Result struct {
	Duration   time.Duration
	Visited    uint32 // nodes dequeued and expanded
	Discovered uint32 // nodes assigned a distance

	StartNotFound bool
	EndNotFound   bool
	RouteFound    bool
	SameNode      bool // start and end are the same page after redirects

	Distance uint8 // cost of the shortest route, valid when RouteFound
	Start    *ResultNode
	End      *ResultNode
	Nodes    []ResultNode
	Edges    []Edge
}

func newResultNode(g *graph.Graph, i uint32, d uint8) ResultNode {
	n := &g.Nodes[i]
	return ResultNode{
		Index:         i,
		ID:            n.ID,
		Title:         n.Title,
		IsRedirect:    n.IsRedirect,
		IsDateRelated: n.IsDateRelated,
		IsListArticle: n.IsListArticle,
		Distance:      d,
	}
}

func (q *query) result(dist DistanceMap, began time.Time) *Result {
	res := &Result{
		Visited:    q.visited,
		Discovered: q.discovered,
		RouteFound: dist.Reached(q.redirectedEnd),
	}
	start := newResultNode(q.g, q.start, dist[q.start])
	end := newResultNode(q.g, q.end, dist[q.end])
	res.Start, res.End = &start, &end

	if res.RouteFound {
		res.Distance = dist[q.redirectedEnd]
		res.Nodes, res.Edges = q.reconstruct(dist)
	}
	res.Duration = time.Since(began)
	return res
}

func (q *query) sameNodeResult(began time.Time) *Result {
	start := newResultNode(q.g, q.start, 0)
	end := newResultNode(q.g, q.end, 0)
	return &Result{
		RouteFound: true,
		SameNode:   true,
		Start:      &start,
		End:        &end,
		Duration:   time.Since(began),
	}
}
