package search

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrOverloaded is returned when a search could not be admitted in time.
	ErrOverloaded = errors.New("search capacity exhausted")
	// ErrQueryTooLarge is returned when one search needs more memory than
	// the whole budget.
	ErrQueryTooLarge = errors.New("search exceeds memory budget")
)

// AdmissionConfig bounds concurrent search memory and search rate.
type AdmissionConfig struct {
	// MemoryBudgetBytes caps the query state of all running searches.
	// If 0, no cap is enforced.
	MemoryBudgetBytes int64

	// RatePerSecond is the sustained search rate. If 0, unlimited.
	RatePerSecond float64

	// Burst is the token bucket size. Defaults to 1 when rate limited.
	Burst int
}

// QueryCost estimates the bytes one search holds on a graph of numNodes:
// three distance maps, the visited bitmap and queue headroom.
func QueryCost(numNodes uint32) int64 {
	n := int64(numNodes)
	return 3*n + n/8 + 64<<10
}

// Admission gates searches. A nil *Admission admits everything.
type Admission struct {
	cost    int64
	budget  int64
	memSem  *semaphore.Weighted // nil if unlimited
	limiter *rate.Limiter       // nil if unlimited
}

// NewAdmission creates admission control for searches over numNodes nodes.
func NewAdmission(numNodes uint32, cfg AdmissionConfig) *Admission {
	a := &Admission{
		cost:   QueryCost(numNodes),
		budget: cfg.MemoryBudgetBytes,
	}
	if cfg.MemoryBudgetBytes > 0 {
		a.memSem = semaphore.NewWeighted(cfg.MemoryBudgetBytes)
	}
	if cfg.RatePerSecond > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), max(cfg.Burst, 1))
	}
	return a
}

// Acquire blocks until a search may run or ctx is done. The returned release
// func must be called when the search finishes.
func (a *Admission) Acquire(ctx context.Context) (release func(), err error) {
	if a == nil {
		return func() {}, nil
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			admissionRejections.WithLabelValues("rate").Inc()
			return nil, fmt.Errorf("%w: %w", ErrOverloaded, err)
		}
	}

	if a.memSem == nil {
		return func() {}, nil
	}
	if a.cost > a.budget {
		admissionRejections.WithLabelValues("too_large").Inc()
		return nil, fmt.Errorf("%w: needs %d bytes, budget %d", ErrQueryTooLarge, a.cost, a.budget)
	}
	if err := a.memSem.Acquire(ctx, a.cost); err != nil {
		admissionRejections.WithLabelValues("memory").Inc()
		return nil, fmt.Errorf("%w: %w", ErrOverloaded, err)
	}
	inflightBytes.Add(float64(a.cost))
	return func() {
		inflightBytes.Sub(float64(a.cost))
		a.memSem.Release(a.cost)
	}, nil
}

// Cost returns the per-search reservation in bytes.
func (a *Admission) Cost() int64 {
	if a == nil {
		return 0
	}
	return a.cost
}
