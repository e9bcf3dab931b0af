package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned when the lock could not be acquired within
// the wait budget.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// KeyedLock serializes work per key while letting different keys
// proceed in parallel. Acquire blocks up to the configured wait; lock
// entries are reference-counted and removed when the last holder
// releases, so the map does not grow with key cardinality.
type KeyedLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	maxWait time.Duration
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLock creates a keyed lock with the given acquisition wait budget.
func NewKeyedLock(maxWait time.Duration) *KeyedLock {
	if maxWait <= 0 {
		maxWait = DefaultLockMaxWait
	}
	return &KeyedLock{
		entries: make(map[string]*lockEntry),
		maxWait: maxWait,
	}
}

// Acquire takes the lock for key, waiting at most the configured budget.
// Returns ErrLockTimeout when the budget elapses and ctx.Err when the
// context is cancelled first.
func (k *KeyedLock) Acquire(ctx context.Context, key string) error {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		entry.ch <- struct{}{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	timer := time.NewTimer(k.maxWait)
	defer timer.Stop()

	select {
	case <-entry.ch:
		return nil
	case <-timer.C:
		k.release(key, false)
		return ErrLockTimeout
	case <-ctx.Done():
		k.release(key, false)
		return ctx.Err()
	}
}

// Release returns the lock for key. Must be called exactly once per
// successful Acquire.
func (k *KeyedLock) Release(key string) {
	k.release(key, true)
}

func (k *KeyedLock) release(key string, held bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, ok := k.entries[key]
	if !ok {
		return
	}

	if held {
		entry.ch <- struct{}{}
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(k.entries, key)
	}
}
