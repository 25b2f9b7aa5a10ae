package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki_router/pkg/search"
	"wiki_router/pkg/titles"
)

func newService(t *testing.T, admission *search.Admission) *search.Service {
	t.Helper()
	f := newFixture(t, redirectPages())
	return search.NewService(f.engine, titles.New(f.g), admission, nil)
}

func TestServiceSearch(t *testing.T) {
	svc := newService(t, nil)

	res, err := svc.Search(context.Background(), search.Query{Start: "R", End: "Q"})
	require.NoError(t, err)
	assert.True(t, res.RouteFound)
	assert.Equal(t, uint8(2), res.Distance)
	assert.Len(t, res.Nodes, 5)
}

func TestServiceSearchNotFound(t *testing.T) {
	svc := newService(t, nil)

	tests := []struct {
		name      string
		query     search.Query
		startMiss bool
		endMiss   bool
	}{
		{"start", search.Query{Start: "Nowhere", End: "T"}, true, false},
		{"end", search.Query{Start: "S", End: "Nowhere"}, false, true},
		{"both", search.Query{Start: "Nowhere", End: "Elsewhere"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Search(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.startMiss, res.StartNotFound)
			assert.Equal(t, tt.endMiss, res.EndNotFound)
			assert.False(t, res.RouteFound)
			assert.Empty(t, res.Nodes)
		})
	}
}

func TestServiceSearchQueryTooLarge(t *testing.T) {
	svc := newService(t, search.NewAdmission(6, search.AdmissionConfig{MemoryBudgetBytes: 1024}))

	_, err := svc.Search(context.Background(), search.Query{Start: "S", End: "T"})
	assert.ErrorIs(t, err, search.ErrQueryTooLarge)
}

func TestAdmissionMemoryBudget(t *testing.T) {
	a := search.NewAdmission(6, search.AdmissionConfig{MemoryBudgetBytes: search.QueryCost(6)})
	assert.Equal(t, search.QueryCost(6), a.Cost())

	release, err := a.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = a.Acquire(ctx)
	assert.ErrorIs(t, err, search.ErrOverloaded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release2, err := a.Acquire(context.Background())
	require.NoError(t, err)
	release2()
}

func TestAdmissionRateLimit(t *testing.T) {
	a := search.NewAdmission(6, search.AdmissionConfig{RatePerSecond: 1, Burst: 1})

	release, err := a.Acquire(context.Background())
	require.NoError(t, err)
	release()

	// The bucket is empty and the next token is a second away.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = a.Acquire(ctx)
	assert.ErrorIs(t, err, search.ErrOverloaded)
}

func TestAdmissionNilAdmitsEverything(t *testing.T) {
	var a *search.Admission
	release, err := a.Acquire(context.Background())
	require.NoError(t, err)
	release()
	assert.Zero(t, a.Cost())
}

func TestQueryCost(t *testing.T) {
	assert.Greater(t, search.QueryCost(1_000_000), int64(3_000_000))
	assert.Less(t, search.QueryCost(10), search.QueryCost(11))
}
