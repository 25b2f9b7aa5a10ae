package search

import "github.com/RoaringBitmap/roaring/v2"

// reconcile merges the two half-searches into a single map of distances from
// the start, covering every node on a shortest route through the junctions.
//
// Walking back from the junctions over incoming links keeps predecessors the
// forward search reached one hop earlier (or at the same distance, through a
// redirect). Walking forward from the junctions keeps successors the backward
// search reached one hop closer to the end (or at the same distance, out of a
// redirect). Both walks write the exact distance from the start, so a node
// already written toward the start is still walked toward the end.
func (q *query) reconcile(junctions []uint32) DistanceMap {
	dist := NewDistanceMap(q.g.NumNodes())
	if len(junctions) == 0 {
		return dist
	}

	queue := NewDeque(len(junctions) * 2)
	for _, v := range junctions {
		dist[v] = q.front[v]
		queue.PushBack(entry{Node: v, Dist: dist[v]})
	}

	// Toward the start.
	for queue.Len() > 0 {
		e := queue.PopFront()
		for _, p := range q.g.Backward(e.Node) {
			pd := q.front[p]
			if dist[p] != Unreached || pd == Unreached {
				continue
			}
			if q.g.Nodes[p].IsRedirect {
				if pd == e.Dist {
					dist[p] = pd
					queue.PushFront(entry{Node: p, Dist: pd})
				}
			} else if pd < e.Dist {
				dist[p] = pd
				queue.PushBack(entry{Node: p, Dist: pd})
			}
		}
	}

	// Toward the end.
	queue.Reset()
	queued := roaring.New()
	for _, v := range junctions {
		queued.Add(v)
		queue.PushBack(entry{Node: v, Dist: dist[v]})
	}
	for queue.Len() > 0 {
		e := queue.PopFront()
		bd := q.back[e.Node]
		redirect := q.g.Nodes[e.Node].IsRedirect
		for _, s := range q.g.Forward(e.Node) {
			sb := q.back[s]
			if sb == Unreached || queued.Contains(s) {
				continue
			}
			if redirect {
				if sb == bd {
					queued.Add(s)
					dist[s] = e.Dist
					queue.PushFront(entry{Node: s, Dist: e.Dist})
				}
			} else if sb < bd && e.Dist < MaxDistance {
				queued.Add(s)
				dist[s] = e.Dist + 1
				queue.PushBack(entry{Node: s, Dist: e.Dist + 1})
			}
		}
	}

	// A redirect start or end sits at its target's distance.
	if q.start != q.redirectedStart {
		dist[q.start] = dist[q.redirectedStart]
	}
	if q.end != q.redirectedEnd {
		dist[q.end] = dist[q.redirectedEnd]
	}
	return dist
}
