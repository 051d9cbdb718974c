// Package lock provides per-key mutual exclusion with a context-bounded wait,
// so actions on one request id are serialized while distinct ids run in
// parallel.
package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

type Keyed struct {
	mu   sync.Mutex
	sems map[string]*entry
}

func NewKeyed() *Keyed { return &Keyed{sems: make(map[string]*entry)} }

// Acquire blocks until the key's section is free or ctx expires. The returned
// release function is safe to call more than once; only the first call counts.
func (k *Keyed) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.sems[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		k.sems[key] = e
	}
	e.refs++
	k.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		k.drop(key, e)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			k.drop(key, e)
		})
	}, nil
}

// drop decrements the waiter count and evicts the entry once nobody holds or
// waits on it, keeping the map from growing with retired request ids.
func (k *Keyed) drop(key string, e *entry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.sems, key)
	}
	k.mu.Unlock()
}
