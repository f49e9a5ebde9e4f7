// Package workpool runs batch work over a bounded goroutine pool.
package workpool

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// DefaultSize bounds concurrent tasks when the caller passes a
// non-positive size.
const DefaultSize = 4

// Pool wraps an ants pool with context-aware submission.
type Pool struct {
	inner *ants.Pool
}

// New creates a blocking pool with at most size concurrent workers.
func New(size int) (*Pool, error) {
	if size <= 0 {
		size = DefaultSize
	}
	inner, err := ants.NewPool(size, ants.WithDisablePurge(true))
	if err != nil {
		return nil, err
	}
	return &Pool{inner: inner}, nil
}

// Submit schedules task, blocking while all workers are busy. A
// canceled context wins over a pending submission.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return p.inner.Submit(task)
}

// Release shuts the pool down. Idempotent.
func (p *Pool) Release() {
	p.inner.Release()
}

// Outcome pairs one input item with its result or error.
type Outcome[In, Out any] struct {
	Input In
	Value Out
	Err   error
}

// Collect fans items out over the pool and joins the outcomes in input
// order. Individual failures land in their Outcome; only submission
// failures (canceled context, released pool) abort the batch.
func Collect[In, Out any](ctx context.Context, pool *Pool, items []In, work func(In) (Out, error)) ([]Outcome[In, Out], error) {
	outcomes := make([]Outcome[In, Out], len(items))
	var wg sync.WaitGroup

	for i, item := range items {
		i, item := i, item
		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			value, workErr := work(item)
			outcomes[i] = Outcome[In, Out]{Input: item, Value: value, Err: workErr}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	wg.Wait()
	return outcomes, nil
}
