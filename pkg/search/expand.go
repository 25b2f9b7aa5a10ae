package search

import "github.com/RoaringBitmap/roaring/v2"

// meet advances the smaller frontier one level at a time until some node is
// reached from both sides or a side runs dry. It returns the meeting nodes
// whose front+back distance is minimal; empty means no route.
//
// Each expansion leaves both maps holding every node within the reached
// levels, so every shortest route crosses a node tested in the expansion
// that first finds a junction.
func (q *query) meet() []uint32 {
	var junctions []uint32
	for q.frontQueue.Len() > 0 && q.backQueue.Len() > 0 {
		var fresh []uint32
		var other DistanceMap
		if q.frontQueue.Len() < q.backQueue.Len() {
			fresh, other = q.expandFront(), q.back
		} else {
			fresh, other = q.expandBack(), q.front
		}

		for _, v := range fresh {
			if other.Reached(v) {
				junctions = append(junctions, v)
			}
		}
		if len(junctions) > 0 {
			break
		}
	}
	return q.closest(junctions)
}

// closest keeps the junctions lying on a shortest route, deduplicated.
func (q *query) closest(junctions []uint32) []uint32 {
	if len(junctions) == 0 {
		return nil
	}
	best := int(^uint(0) >> 1)
	for _, v := range junctions {
		best = min(best, int(q.front[v])+int(q.back[v]))
	}

	seen := roaring.New()
	out := junctions[:0]
	for _, v := range junctions {
		if int(q.front[v])+int(q.back[v]) == best && seen.CheckedAdd(v) {
			out = append(out, v)
		}
	}
	return out
}

// headLevel drops stale entries from the head of dq and returns the distance
// of the first live one.
func headLevel(dq *Deque, dist DistanceMap) (uint8, bool) {
	for dq.Len() > 0 {
		e := dq.Front()
		if e.Dist == dist[e.Node] {
			return e.Dist, true
		}
		dq.PopFront()
	}
	return 0, false
}

// expandFront drains every queued node at the head distance of the forward
// search. Leaving a redirect is free, so its target joins the current level
// and may lower a distance assigned earlier in the same level.
func (q *query) expandFront() []uint32 {
	q.fresh = q.fresh[:0]
	level, ok := headLevel(q.frontQueue, q.front)
	if !ok {
		return q.fresh
	}

	for q.frontQueue.Len() > 0 {
		e := q.frontQueue.Front()
		if e.Dist > level {
			break
		}
		q.frontQueue.PopFront()
		if e.Dist != q.front[e.Node] {
			continue // superseded by a cheaper entry
		}
		q.visited++

		u := e.Node
		if q.g.Nodes[u].IsRedirect {
			for _, v := range q.g.Forward(u) {
				if q.front[v] <= level || !q.allowed(v) {
					continue
				}
				if q.front[v] == Unreached {
					q.discovered++
				}
				q.front[v] = level
				q.frontQueue.PushFront(entry{Node: v, Dist: level})
				q.fresh = append(q.fresh, v)
			}
			continue
		}

		if level == MaxDistance {
			continue
		}
		for _, v := range q.g.Forward(u) {
			if q.front[v] != Unreached || !q.allowed(v) {
				continue
			}
			q.discovered++
			q.front[v] = level + 1
			q.frontQueue.PushBack(entry{Node: v, Dist: level + 1})
			q.fresh = append(q.fresh, v)
		}
	}
	if level < MaxDistance {
		q.closeFront(level + 1)
	}
	return q.fresh
}

// closeFront follows redirects just assigned the next level to their targets,
// which sit at the same level. Newly reached redirects are followed in turn.
func (q *query) closeFront(next uint8) {
	for i := 0; i < len(q.fresh); i++ {
		u := q.fresh[i]
		if q.front[u] != next || !q.g.Nodes[u].IsRedirect {
			continue
		}
		for _, v := range q.g.Forward(u) {
			if q.front[v] != Unreached || !q.allowed(v) {
				continue
			}
			q.discovered++
			q.front[v] = next
			q.frontQueue.PushBack(entry{Node: v, Dist: next})
			q.fresh = append(q.fresh, v)
		}
	}
}

// expandBack drains every queued node at the head distance of the backward
// search over incoming links. Entering a redirect is free, so a redirect
// predecessor joins the current level. Distances never need lowering here:
// the cost of an edge depends only on its source, which is assigned once.
func (q *query) expandBack() []uint32 {
	q.fresh = q.fresh[:0]
	level, ok := headLevel(q.backQueue, q.back)
	if !ok {
		return q.fresh
	}

	for q.backQueue.Len() > 0 {
		e := q.backQueue.Front()
		if e.Dist > level {
			break
		}
		q.backQueue.PopFront()
		q.visited++

		for _, v := range q.g.Backward(e.Node) {
			if q.back[v] != Unreached || !q.allowed(v) {
				continue
			}
			if q.g.Nodes[v].IsRedirect {
				q.back[v] = level
				q.backQueue.PushFront(entry{Node: v, Dist: level})
			} else {
				if level == MaxDistance {
					continue
				}
				q.back[v] = level + 1
				q.backQueue.PushBack(entry{Node: v, Dist: level + 1})
			}
			q.discovered++
			q.fresh = append(q.fresh, v)
		}
	}
	if level < MaxDistance {
		q.closeBack(level + 1)
	}
	return q.fresh
}

// closeBack adds the redirects pointing at nodes just assigned the next level.
// Entering a redirect is free, so they share that level.
func (q *query) closeBack(next uint8) {
	for i := 0; i < len(q.fresh); i++ {
		w := q.fresh[i]
		if q.back[w] != next {
			continue
		}
		for _, v := range q.g.Backward(w) {
			if q.back[v] != Unreached || !q.g.Nodes[v].IsRedirect || !q.allowed(v) {
				continue
			}
			q.discovered++
			q.back[v] = next
			q.backQueue.PushBack(entry{Node: v, Dist: next})
			q.fresh = append(q.fresh, v)
		}
	}
}
