package hashing

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool runs Hash and Verify calls on an [Engine] while keeping the total
// Argon2 memory of in-flight calls under a budget. Each call reserves its
// memory cost in KiB before deriving and releases it when done; calls that
// would exceed the budget wait.
//
// A call whose own cost exceeds the whole budget reserves the whole budget,
// so it runs alone rather than never.
//
// Pool is safe for concurrent use.
type Pool struct {
	engine *Engine
	sem    *semaphore.Weighted
	budget int64
}

// NewPool returns a Pool over e with a budget of budgetKiB. A non-positive
// budget is raised to the memory cost of one call under e's current
// parameters.
func NewPool(e *Engine, budgetKiB int64) *Pool {
	if budgetKiB <= 0 {
		budgetKiB = int64(DefaultMemoryKiB)
		if p, err := e.provider.Parameters(); err == nil {
			budgetKiB = int64(p.MemoryKiB)
		}
	}
	return &Pool{
		engine: e,
		sem:    semaphore.NewWeighted(budgetKiB),
		budget: budgetKiB,
	}
}

// Budget returns the pool's memory budget in KiB.
func (p *Pool) Budget() int64 { return p.budget }

// Hash acquires memory for one derivation under the current parameters,
// then calls [Engine.Hash]. It returns ctx.Err() if ctx ends while waiting.
func (p *Pool) Hash(ctx context.Context, pepper, password []byte) (string, error) {
	params, err := p.engine.Parameters()
	if err != nil {
		return "", err
	}
	release, err := p.acquire(ctx, params.MemoryKiB)
	if err != nil {
		return "", err
	}
	defer release()
	return p.engine.Hash(pepper, password)
}

// Verify acquires memory for the cost embedded in encoded, then calls
// [Engine.Verify]. Unparseable input fails without waiting.
func (p *Pool) Verify(ctx context.Context, pepper, password []byte, encoded string) (bool, error) {
	info, err := p.engine.Info(encoded)
	if err != nil {
		return false, newError("verify", KindParse, err)
	}
	release, err := p.acquire(ctx, info.Params.MemoryKiB)
	if err != nil {
		return false, err
	}
	defer release()
	return p.engine.Verify(pepper, password, encoded)
}

func (p *Pool) acquire(ctx context.Context, memoryKiB uint32) (func(), error) {
	n := min(int64(memoryKiB), p.budget)
	if n < 1 {
		n = 1
	}
	if err := p.sem.Acquire(ctx, n); err != nil {
		return nil, err
	}
	return func() { p.sem.Release(n) }, nil
}
