package search

import "github.com/RoaringBitmap/roaring/v2"

// reconstruct walks forward from the resolved start, following only links
// consistent with dist, and returns every node and edge it crosses. A redirect
// start or end is appended with its alias edge.
func (q *query) reconstruct(dist DistanceMap) ([]ResultNode, []Edge) {
	var (
		nodes   []ResultNode
		edges   []Edge
		visited = roaring.New()
		queue   = NewDeque(64)
	)

	queue.PushBack(entry{Node: q.redirectedStart, Dist: dist[q.redirectedStart]})
	for queue.Len() > 0 {
		e := queue.PopFront()
		u := e.Node
		if !visited.CheckedAdd(u) {
			continue
		}
		d := dist[u]
		nodes = append(nodes, newResultNode(q.g, u, d))

		from := q.g.Nodes[u].ID
		redirect := q.g.Nodes[u].IsRedirect
		for _, v := range q.g.Forward(u) {
			vd := dist[v]
			if vd == Unreached {
				continue
			}
			switch {
			case redirect && vd == d:
				queue.PushFront(entry{Node: v, Dist: vd})
			case !redirect && vd == d+1:
				queue.PushBack(entry{Node: v, Dist: vd})
			default:
				continue
			}
			edges = append(edges, Edge{From: from, To: q.g.Nodes[v].ID})
		}
	}

	reattach := func(orig, resolved uint32) {
		if orig == resolved || visited.Contains(orig) {
			return
		}
		visited.Add(orig)
		nodes = append(nodes, newResultNode(q.g, orig, dist[resolved]))
		edges = append(edges, Edge{From: q.g.Nodes[orig].ID, To: q.g.Nodes[resolved].ID})
	}
	reattach(q.start, q.redirectedStart)
	reattach(q.end, q.redirectedEnd)
	return nodes, edges
}
