package resilience

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLock_AcquireRelease(t *testing.T) {
	lock := NewKeyedLock(time.Second)

	require.NoError(t, lock.Acquire(context.Background(), "med-1"))
	lock.Release("med-1")
	require.NoError(t, lock.Acquire(context.Background(), "med-1"))
	lock.Release("med-1")
}

func TestKeyedLock_Timeout(t *testing.T) {
	lock := NewKeyedLock(20 * time.Millisecond)

	require.NoError(t, lock.Acquire(context.Background(), "med-1"))
	defer lock.Release("med-1")

	err := lock.Acquire(context.Background(), "med-1")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestKeyedLock_DifferentKeysDoNotBlock(t *testing.T) {
	lock := NewKeyedLock(50 * time.Millisecond)

	require.NoError(t, lock.Acquire(context.Background(), "med-1"))
	defer lock.Release("med-1")

	require.NoError(t, lock.Acquire(context.Background(), "med-2"))
	lock.Release("med-2")
}

func TestKeyedLock_ContextCancelled(t *testing.T) {
	lock := NewKeyedLock(time.Second)

	require.NoError(t, lock.Acquire(context.Background(), "med-1"))
	defer lock.Release("med-1")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := lock.Acquire(ctx, "med-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyedLock_SerializesHolders(t *testing.T) {
	lock := NewKeyedLock(time.Second)

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !assert.NoError(t, lock.Acquire(context.Background(), "med-1")) {
				return
			}
			defer lock.Release("med-1")

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "only one holder per key at a time")
}

func TestKeyedLock_EntriesAreReclaimed(t *testing.T) {
	lock := NewKeyedLock(time.Second)

	require.NoError(t, lock.Acquire(context.Background(), "med-1"))
	lock.Release("med-1")

	lock.mu.Lock()
	defer lock.mu.Unlock()
	assert.Empty(t, lock.entries, "released keys must not accumulate")
}
