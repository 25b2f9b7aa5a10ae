package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the node indices of the largest weakly connected
// component, in ascending order.
func LargestComponent(g *Graph) []uint32 {
	numNodes := g.NumNodes()
	if numNodes == 0 {
		return nil
	}

	uf := NewUnionFind(numNodes)
	for u := range numNodes {
		for _, v := range g.Forward(u) {
			uf.Union(u, v)
		}
	}

	bestRoot, bestSize := uint32(0), uint32(0)
	for i := range numNodes {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot, bestSize = root, uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := range numNodes {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// FilterToComponent creates a new graph containing only the given nodes
// (ascending) and the edges between them. Node metadata is carried over and
// the per-node link order is preserved, so redirect targets stay first.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	if len(nodes) == 0 {
		return &Graph{}
	}

	const dropped = ^uint32(0)
	oldToNew := make([]uint32, g.NumNodes())
	for i := range oldToNew {
		oldToNew[i] = dropped
	}
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	numNodes := uint32(len(nodes))
	out := &Graph{Nodes: make([]Node, numNodes)}

	// Forward edges: copy surviving heads in place order.
	bwdCount := make([]uint32, numNodes+1)
	for newU, oldU := range nodes {
		n := g.Nodes[oldU]
		start := uint32(len(out.FwdEdges))
		for _, oldV := range g.Forward(oldU) {
			if newV := oldToNew[oldV]; newV != dropped {
				out.FwdEdges = append(out.FwdEdges, newV)
				bwdCount[newV+1]++
			}
		}
		n.Fwd = Range{Start: start, End: uint32(len(out.FwdEdges))}
		if n.IsRedirect && n.Fwd.Len() == 0 {
			n.IsRedirect = false
		}
		out.Nodes[newU] = n
	}

	// Backward edges: prefix sums, then place each edge at its head's slot.
	for i := uint32(1); i <= numNodes; i++ {
		bwdCount[i] += bwdCount[i-1]
	}
	out.BwdEdges = make([]uint32, len(out.FwdEdges))
	pos := make([]uint32, numNodes)
	copy(pos, bwdCount[:numNodes])
	for u := range numNodes {
		for _, v := range out.Forward(u) {
			out.BwdEdges[pos[v]] = u
			pos[v]++
		}
	}
	for u := range numNodes {
		out.Nodes[u].Bwd = Range{Start: bwdCount[u], End: bwdCount[u+1]}
	}
	return out
}
