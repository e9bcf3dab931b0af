package gateway

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PreservesPerKeyOrder(t *testing.T) {
	d := NewDispatcher(4, 16)

	var mu sync.Mutex
	seen := make(map[string][]int)

	keys := []string{"AMX", "IBU", "PCM"}
	for i := 0; i < 30; i++ {
		i := i
		key := keys[i%len(keys)]
		err := d.Dispatch(context.Background(), key, func() {
			mu.Lock()
			seen[key] = append(seen[key], i)
			mu.Unlock()
		})
		require.NoError(t, err)
	}

	d.Close()

	for _, key := range keys {
		values := seen[key]
		require.Len(t, values, 10)
		for i := 1; i < len(values); i++ {
			assert.Less(t, values[i-1], values[i],
				"tasks for key %s ran out of order", key)
		}
	}
}

func TestDispatcher_DifferentKeysRunInParallel(t *testing.T) {
	d := NewDispatcher(2, 4)
	defer d.Close()

	block := make(chan struct{})
	started := make(chan struct{})

	// occupy the worker owning key "a"
	require.NoError(t, d.Dispatch(context.Background(), "a", func() {
		close(started)
		<-block
	}))
	<-started

	// find a key on the other worker and verify it is not stuck
	// behind "a"
	done := make(chan struct{})
	for i := 0; ; i++ {
		key := fmt.Sprintf("key-%d", i)
		if workerIndex(key, 2) != workerIndex("a", 2) {
			require.NoError(t, d.Dispatch(context.Background(), key, func() {
				close(done)
			}))
			break
		}
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task on an unrelated key was blocked")
	}
	close(block)
}

func TestDispatcher_DispatchAfterContextCancel(t *testing.T) {
	d := NewDispatcher(1, 1)
	defer d.Close()

	block := make(chan struct{})
	defer close(block)
	require.NoError(t, d.Dispatch(context.Background(), "a", func() { <-block }))
	// fill the queue
	require.NoError(t, d.Dispatch(context.Background(), "a", func() {}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Dispatch(ctx, "a", func() {})
	assert.ErrorIs(t, err, context.Canceled)
}
