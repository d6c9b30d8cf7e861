// Package workpool runs per-repository jobs with bounded concurrency.
package workpool

import (
	"context"
	"sync"
)

// Run calls fn for every index in [0, n) with at most jobs calls in flight
// and returns the results in index order. Once ctx is done no new call is
// started and canceled fills the remaining slots. Calls already running
// receive a context that ignores the cancellation so each item is either
// fully processed or untouched.
func Run[T any](ctx context.Context, n, jobs int, fn func(ctx context.Context, i int) T, canceled func(i int) T) []T {
	results := make([]T, n)
	if jobs < 1 {
		jobs = 1
	}
	detached := context.WithoutCancel(ctx)
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			results[i] = canceled(i)
			continue
		case sem <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-sem
			results[i] = canceled(i)
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = fn(detached, i)
		}(i)
	}
	wg.Wait()
	return results
}

// KeyedMutex serializes work per key, e.g. per central repository.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
