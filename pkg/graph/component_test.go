package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki_router/pkg/dump"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)
	for i := range uint32(5) {
		assert.Equal(t, i, uf.Find(i))
	}

	assert.True(t, uf.Union(0, 1))
	assert.True(t, uf.Union(2, 3))
	assert.NotEqual(t, uf.Find(0), uf.Find(2))

	assert.True(t, uf.Union(1, 3))
	assert.False(t, uf.Union(0, 2), "already joined")
	assert.Equal(t, uf.Find(0), uf.Find(3))
	assert.NotEqual(t, uf.Find(0), uf.Find(4))
}

func TestLargestComponent(t *testing.T) {
	// Component {A, B, R(redirect)->C, C} and component {X, Y}.
	g := Build([]dump.Page{
		{ID: 1, Title: "A", Links: []uint32{2}},
		{ID: 2, Title: "B", Links: []uint32{3}},
		{ID: 3, Title: "R", IsRedirect: true, Links: []uint32{4}},
		{ID: 4, Title: "C"},
		{ID: 5, Title: "X", Links: []uint32{6}},
		{ID: 6, Title: "Y"},
	})

	nodes := LargestComponent(g)
	assert.Equal(t, []uint32{0, 1, 2, 3}, nodes)

	sub := FilterToComponent(g, nodes)
	require.NoError(t, sub.Validate())
	assert.Equal(t, uint32(4), sub.NumNodes())
	assert.Equal(t, "R", sub.Nodes[2].Title)
	assert.True(t, sub.Nodes[2].IsRedirect)

	target, ok := sub.RedirectTarget(2)
	assert.True(t, ok)
	assert.Equal(t, "C", sub.Nodes[target].Title)
	assert.Equal(t, []uint32{1}, sub.Backward(2))
	assert.Len(t, sub.FwdEdges, 3)
	assert.Len(t, sub.BwdEdges, 3)
}

func TestFilterToComponentEmpty(t *testing.T) {
	g := FilterToComponent(&Graph{}, nil)
	assert.Equal(t, uint32(0), g.NumNodes())
	assert.Nil(t, LargestComponent(g))
}
