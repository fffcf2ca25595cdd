package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// entry is a stored outcome. present is false for a recorded absence.
type entry[V any] struct {
	value   V
	present bool
}

// tier memoizes one kind of lookup. Stored entries are permanent; at most
// one computation per key runs at a time.
type tier[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

func newTier[V any]() *tier[V] {
	return &tier[V]{entries: make(map[string]entry[V])}
}

// compute produces an outcome for a key. store reports whether the outcome
// is kept; an error is never kept.
type compute[V any] func(ctx context.Context) (e entry[V], store bool, err error)

func (t *tier[V]) lookup(key string) (entry[V], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key]
	return e, ok
}

func (t *tier[V]) put(key string, e entry[V]) {
	t.mu.Lock()
	t.entries[key] = e
	t.mu.Unlock()
}

// get returns the stored entry for key or joins the single computation for
// it. The computation runs detached from ctx, so a caller that stops
// waiting does not abort it and its result is still recorded.
func (t *tier[V]) get(ctx context.Context, key string, fn compute[V]) (entry[V], error) {
	if e, ok := t.lookup(key); ok {
		t.hits.Add(1)
		return e, nil
	}
	t.misses.Add(1)

	detached := context.WithoutCancel(ctx)
	ch := t.group.DoChan(key, func() (any, error) {
		if e, ok := t.lookup(key); ok {
			return e, nil
		}
		e, store, err := fn(detached)
		if err != nil {
			return nil, err
		}
		if store {
			t.put(key, e)
		}
		return e, nil
	})

	select {
	case <-ctx.Done():
		return entry[V]{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return entry[V]{}, res.Err
		}
		return res.Val.(entry[V]), nil
	}
}

func (t *tier[V]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *tier[V]) stats() TierStats {
	return TierStats{Hits: t.hits.Load(), Misses: t.misses.Load(), Entries: t.len()}
}
