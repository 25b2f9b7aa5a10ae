package search

import (
	"errors"
	"fmt"
	"time"

	"wiki_router/pkg/graph"
)

// ErrNodeOutOfRange is returned when a query names a node index the graph
// does not have.
var ErrNodeOutOfRange = errors.New("node index out of range")

// Filter selects which noise pages may be traversed as intermediate hops.
// Start and end pages are always allowed.
type Filter struct {
	EnableDateRelated bool
	EnableListArticle bool
}

func (f Filter) excludes(n *graph.Node) bool {
	return (n.IsDateRelated && !f.EnableDateRelated) ||
		(n.IsListArticle && !f.EnableListArticle)
}

// Engine runs bidirectional 0/1 BFS queries over an immutable graph.
// It is safe for concurrent use; each query allocates its own state.
type Engine struct {
	g *graph.Graph
}

// NewEngine creates an Engine over g.
func NewEngine(g *graph.Graph) *Engine {
	return &Engine{g: g}
}

// Graph returns the graph the engine searches.
func (e *Engine) Graph() *graph.Graph { return e.g }

// SearchByIndex finds every shortest route from start to end. A redirect
// start or end is first resolved to its target; the result still reports it
// and carries the redirect edge.
func (e *Engine) SearchByIndex(start, end uint32, f Filter) (*Result, error) {
	n := e.g.NumNodes()
	if start >= n || end >= n {
		return nil, fmt.Errorf("%w: start=%d end=%d nodes=%d", ErrNodeOutOfRange, start, end, n)
	}

	began := time.Now()
	q := newQuery(e.g, start, end, f)

	// Step 1: Same page after redirect resolution.
	if q.redirectedStart == q.redirectedEnd {
		return q.sameNodeResult(began), nil
	}

	// Step 2: Bidirectional search until the frontiers meet.
	junctions := q.meet()

	// Step 3: Merge both distance maps into one.
	dist := q.reconcile(junctions)

	// Step 4: Collect every node and edge on a shortest route.
	return q.result(dist, began), nil
}

// query is the per-request search state.
type query struct {
	g      *graph.Graph
	filter Filter

	start, end                     uint32
	redirectedStart, redirectedEnd uint32

	front, back           DistanceMap
	frontQueue, backQueue *Deque
	fresh                 []uint32 // assignments made by the last expansion

	visited, discovered uint32
}

func newQuery(g *graph.Graph, start, end uint32, f Filter) *query {
	q := &query{
		g:          g,
		filter:     f,
		start:      start,
		end:        end,
		front:      NewDistanceMap(g.NumNodes()),
		back:       NewDistanceMap(g.NumNodes()),
		frontQueue: NewDeque(64),
		backQueue:  NewDeque(64),
	}
	q.redirectedStart, _ = g.RedirectTarget(start)
	q.redirectedEnd, _ = g.RedirectTarget(end)

	q.front[q.redirectedStart] = 0
	q.frontQueue.PushBack(entry{Node: q.redirectedStart})
	q.back[q.redirectedEnd] = 0
	q.backQueue.PushBack(entry{Node: q.redirectedEnd})
	return q
}

// allowed reports whether v may be assigned a distance under the filter.
func (q *query) allowed(v uint32) bool {
	if v == q.start || v == q.end || v == q.redirectedStart || v == q.redirectedEnd {
		return true
	}
	return !q.filter.excludes(&q.g.Nodes[v])
}
