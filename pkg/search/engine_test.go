package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki_router/pkg/dump"
	"wiki_router/pkg/graph"
	"wiki_router/pkg/search"
)

// fixture is a small graph addressed by title.
type fixture struct {
	g      *graph.Graph
	engine *search.Engine
	index  map[string]uint32
}

func newFixture(t *testing.T, pages []dump.Page) *fixture {
	t.Helper()
	g := graph.Build(pages)
	require.NoError(t, g.Validate())
	f := &fixture{g: g, engine: search.NewEngine(g), index: map[string]uint32{}}
	for i := range g.Nodes {
		f.index[g.Nodes[i].Title] = uint32(i)
	}
	return f
}

func (f *fixture) search(t *testing.T, start, end string, filter search.Filter) *search.Result {
	t.Helper()
	s, ok := f.index[start]
	require.True(t, ok, start)
	e, ok := f.index[end]
	require.True(t, ok, end)
	res, err := f.engine.SearchByIndex(s, e, filter)
	require.NoError(t, err)
	return res
}

func nodeDistances(res *search.Result) map[string]uint8 {
	m := make(map[string]uint8, len(res.Nodes))
	for _, n := range res.Nodes {
		m[n.Title] = n.Distance
	}
	return m
}

// chainPages is A -> B -> C(redirect) -> D plus an isolated E.
func chainPages() []dump.Page {
	return []dump.Page{
		{ID: 1, Title: "A", Links: []uint32{2}},
		{ID: 2, Title: "B", Links: []uint32{3}},
		{ID: 3, Title: "C", IsRedirect: true, Links: []uint32{4}},
		{ID: 4, Title: "D"},
		{ID: 5, Title: "E"},
	}
}

func TestSearchRedirectHopIsFree(t *testing.T) {
	f := newFixture(t, chainPages())

	res := f.search(t, "A", "D", search.Filter{})
	require.True(t, res.RouteFound)
	assert.False(t, res.SameNode)
	assert.Equal(t, uint8(2), res.Distance)
	assert.Equal(t, map[string]uint8{"A": 0, "B": 1, "C": 2, "D": 2}, nodeDistances(res))
	assert.ElementsMatch(t, []search.Edge{{From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 4}}, res.Edges)

	require.NotNil(t, res.Start)
	require.NotNil(t, res.End)
	assert.Equal(t, "A", res.Start.Title)
	assert.Equal(t, "D", res.End.Title)
	assert.Equal(t, uint8(2), res.End.Distance)
	assert.NotZero(t, res.Visited)
	assert.NotZero(t, res.Discovered)
}

func TestSearchDisconnected(t *testing.T) {
	f := newFixture(t, chainPages())

	res := f.search(t, "A", "E", search.Filter{})
	assert.False(t, res.RouteFound)
	assert.False(t, res.StartNotFound)
	assert.False(t, res.EndNotFound)
	assert.Empty(t, res.Nodes)
	assert.Empty(t, res.Edges)
	assert.NotZero(t, res.Visited)
}

func TestSearchWrongDirection(t *testing.T) {
	f := newFixture(t, chainPages())

	res := f.search(t, "D", "A", search.Filter{})
	assert.False(t, res.RouteFound)
	assert.Empty(t, res.Nodes)
}

func TestSearchSameNode(t *testing.T) {
	f := newFixture(t, chainPages())

	res := f.search(t, "B", "B", search.Filter{})
	assert.True(t, res.RouteFound)
	assert.True(t, res.SameNode)
	assert.Equal(t, uint8(0), res.Distance)
	assert.Empty(t, res.Nodes)
	assert.Empty(t, res.Edges)

	// C redirects to D, so both resolve to the same page.
	res = f.search(t, "C", "D", search.Filter{})
	assert.True(t, res.RouteFound)
	assert.True(t, res.SameNode)
	assert.Equal(t, "C", res.Start.Title)
	assert.Equal(t, "D", res.End.Title)
}

func TestSearchOutOfRange(t *testing.T) {
	f := newFixture(t, chainPages())

	_, err := f.engine.SearchByIndex(0, 99, search.Filter{})
	assert.ErrorIs(t, err, search.ErrNodeOutOfRange)
	_, err = f.engine.SearchByIndex(99, 0, search.Filter{})
	assert.ErrorIs(t, err, search.ErrNodeOutOfRange)
}

// redirectPages: S -> X -> Y -> T, with R redirecting to X and Q redirecting
// to T.
func redirectPages() []dump.Page {
	return []dump.Page{
		{ID: 1, Title: "S", Links: []uint32{2}},
		{ID: 2, Title: "X", Links: []uint32{3}},
		{ID: 3, Title: "Y", Links: []uint32{4}},
		{ID: 4, Title: "T"},
		{ID: 5, Title: "R", IsRedirect: true, Links: []uint32{2}},
		{ID: 6, Title: "Q", IsRedirect: true, Links: []uint32{4}},
	}
}

func TestSearchRedirectStartAddsOneEdge(t *testing.T) {
	f := newFixture(t, redirectPages())

	direct := f.search(t, "X", "T", search.Filter{})
	aliased := f.search(t, "R", "T", search.Filter{})
	require.True(t, direct.RouteFound)
	require.True(t, aliased.RouteFound)

	assert.Equal(t, direct.Distance, aliased.Distance)
	assert.Len(t, aliased.Nodes, len(direct.Nodes)+1)
	assert.Len(t, aliased.Edges, len(direct.Edges)+1)
	assert.Contains(t, aliased.Edges, search.Edge{From: 5, To: 2})
	assert.Equal(t, uint8(0), nodeDistances(aliased)["R"])
	assert.Equal(t, uint8(0), aliased.Start.Distance)
	assert.Equal(t, "R", aliased.Start.Title)
}

func TestSearchRedirectEndAddsOneEdge(t *testing.T) {
	f := newFixture(t, redirectPages())

	direct := f.search(t, "S", "T", search.Filter{})
	aliased := f.search(t, "S", "Q", search.Filter{})
	require.True(t, aliased.RouteFound)

	assert.Equal(t, uint8(3), aliased.Distance)
	assert.Len(t, aliased.Edges, len(direct.Edges)+1)
	assert.Contains(t, aliased.Edges, search.Edge{From: 6, To: 4})
	assert.Equal(t, uint8(3), nodeDistances(aliased)["Q"])
	assert.Equal(t, uint8(3), aliased.End.Distance)
}

func TestSearchRedirectBothEnds(t *testing.T) {
	f := newFixture(t, redirectPages())

	res := f.search(t, "R", "Q", search.Filter{})
	require.True(t, res.RouteFound)
	assert.Equal(t, uint8(2), res.Distance)
	assert.Equal(t, map[string]uint8{"R": 0, "X": 0, "Y": 1, "T": 2, "Q": 2}, nodeDistances(res))
	assert.ElementsMatch(t, []search.Edge{
		{From: 2, To: 3}, {From: 3, To: 4}, {From: 5, To: 2}, {From: 6, To: 4},
	}, res.Edges)
}

// A redirect reached in the same level as a plain page linking to the same
// target must lower that target's distance.
func TestSearchRedirectLowersSameLevelDistance(t *testing.T) {
	f := newFixture(t, []dump.Page{
		{ID: 1, Title: "S", Links: []uint32{2, 3}},
		{ID: 2, Title: "P", Links: []uint32{4}},
		{ID: 3, Title: "Alias", IsRedirect: true, Links: []uint32{4}},
		{ID: 4, Title: "X", Links: []uint32{5}},
		{ID: 5, Title: "T"},
	})

	res := f.search(t, "S", "T", search.Filter{})
	require.True(t, res.RouteFound)
	assert.Equal(t, uint8(2), res.Distance)
	assert.Equal(t, map[string]uint8{"S": 0, "Alias": 1, "X": 1, "T": 2}, nodeDistances(res))
	assert.NotContains(t, res.Edges, search.Edge{From: 2, To: 4})
}

func TestSearchReturnsEveryShortestRoute(t *testing.T) {
	// Diamond S -> {M1, M2} -> T plus a longer detour S -> L1 -> L2 -> T.
	f := newFixture(t, []dump.Page{
		{ID: 1, Title: "S", Links: []uint32{2, 3, 5}},
		{ID: 2, Title: "M1", Links: []uint32{4}},
		{ID: 3, Title: "M2", Links: []uint32{4}},
		{ID: 4, Title: "T"},
		{ID: 5, Title: "L1", Links: []uint32{6}},
		{ID: 6, Title: "L2", Links: []uint32{4}},
	})

	res := f.search(t, "S", "T", search.Filter{})
	require.True(t, res.RouteFound)
	assert.Equal(t, uint8(2), res.Distance)
	assert.Equal(t, map[string]uint8{"S": 0, "M1": 1, "M2": 1, "T": 2}, nodeDistances(res))
	assert.ElementsMatch(t, []search.Edge{
		{From: 1, To: 2}, {From: 1, To: 3}, {From: 2, To: 4}, {From: 3, To: 4},
	}, res.Edges)
}

// The searches meet at J, while the other route crosses the meeting level
// through the redirect R. The backward side expands first and reaches J and
// X. The forward side then reaches J and R in the same level.
func TestSearchKeepsRouteThroughRedirectAtMeetingLevel(t *testing.T) {
	f := newFixture(t, []dump.Page{
		{ID: 1, Title: "S", Links: []uint32{2, 3}},
		{ID: 2, Title: "J", Links: []uint32{5}},
		{ID: 3, Title: "R", IsRedirect: true, Links: []uint32{4}},
		{ID: 4, Title: "X", Links: []uint32{5}},
		{ID: 5, Title: "T"},
	})

	res := f.search(t, "S", "T", search.Filter{})
	require.True(t, res.RouteFound)
	assert.Equal(t, uint8(2), res.Distance)
	assert.Equal(t, map[string]uint8{"S": 0, "J": 1, "R": 1, "X": 1, "T": 2}, nodeDistances(res))
	assert.ElementsMatch(t, []search.Edge{
		{From: 1, To: 2}, {From: 1, To: 3}, {From: 3, To: 4}, {From: 2, To: 5}, {From: 4, To: 5},
	}, res.Edges)
	checkAgainstReference(t, f.g, f.index["S"], f.index["T"], search.Filter{}, res)
}

func filterPages() []dump.Page {
	return []dump.Page{
		{ID: 1, Title: "Start", Links: []uint32{2, 3, 4}},
		{ID: 2, Title: "List of things", IsListArticle: true, Links: []uint32{9}},
		{ID: 3, Title: "1999", IsDateRelated: true, Links: []uint32{9}},
		{ID: 4, Title: "Hop1", Links: []uint32{5}},
		{ID: 5, Title: "Hop2", Links: []uint32{9}},
		{ID: 9, Title: "Goal"},
	}
}

func TestSearchFilters(t *testing.T) {
	f := newFixture(t, filterPages())

	res := f.search(t, "Start", "Goal", search.Filter{})
	require.True(t, res.RouteFound)
	assert.Equal(t, uint8(3), res.Distance)
	assert.NotContains(t, nodeDistances(res), "List of things")
	assert.NotContains(t, nodeDistances(res), "1999")

	res = f.search(t, "Start", "Goal", search.Filter{EnableListArticle: true})
	assert.Equal(t, uint8(2), res.Distance)
	assert.Equal(t, map[string]uint8{"Start": 0, "List of things": 1, "Goal": 2}, nodeDistances(res))

	res = f.search(t, "Start", "Goal", search.Filter{EnableDateRelated: true, EnableListArticle: true})
	assert.Equal(t, uint8(2), res.Distance)
	assert.Len(t, res.Nodes, 4)
}

func TestSearchFlaggedEndpointsAreAllowed(t *testing.T) {
	f := newFixture(t, filterPages())

	res := f.search(t, "1999", "Goal", search.Filter{})
	require.True(t, res.RouteFound)
	assert.Equal(t, uint8(1), res.Distance)

	res = f.search(t, "Start", "List of things", search.Filter{})
	require.True(t, res.RouteFound)
	assert.Equal(t, uint8(1), res.Distance)
}

func TestSearchDistanceCap(t *testing.T) {
	chain := func(n int) []dump.Page {
		pages := make([]dump.Page, n)
		for i := range pages {
			pages[i] = dump.Page{ID: uint32(i + 1), Title: titleOf(i)}
			if i+1 < n {
				pages[i].Links = []uint32{uint32(i + 2)}
			}
		}
		return pages
	}

	f := newFixture(t, chain(255))
	res := f.search(t, titleOf(0), titleOf(254), search.Filter{})
	require.True(t, res.RouteFound)
	assert.Equal(t, search.MaxDistance, res.Distance)
	assert.Len(t, res.Nodes, 255)

	f = newFixture(t, chain(256))
	res = f.search(t, titleOf(0), titleOf(255), search.Filter{})
	assert.False(t, res.RouteFound)
	assert.Empty(t, res.Nodes)
}

func TestSearchIdempotent(t *testing.T) {
	f := newFixture(t, redirectPages())

	first := f.search(t, "R", "Q", search.Filter{})
	second := f.search(t, "R", "Q", search.Filter{})
	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Edges, second.Edges)
	assert.Equal(t, first.Visited, second.Visited)
	assert.Equal(t, first.Discovered, second.Discovered)
}
