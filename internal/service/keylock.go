package service

import (
	"context"
	"sync"
)

// keyLocks hands out one single-token semaphore per key. Acquire honours
// context cancellation so a caller waiting behind a long recalculation can
// give up.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func (k *keyLocks) get(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[string]chan struct{})
	}
	ch := k.locks[key]
	if ch == nil {
		ch = make(chan struct{}, 1)
		ch <- struct{}{}
		k.locks[key] = ch
	}
	return ch
}

// acquire blocks until the key is free and returns its release func.
func (k *keyLocks) acquire(ctx context.Context, key string) (func(), error) {
	ch := k.get(key)
	select {
	case <-ch:
		return func() { ch <- struct{}{} }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func assigneeKey(projectID, assigneeID string) string {
	return projectID + "\x00" + assigneeID
}
