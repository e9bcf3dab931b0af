package gateway

import (
	"context"
	"hash/fnv"
	"sync"
)

// Dispatcher fans work out to a fixed set of workers, routing by key so
// tasks sharing a key run on the same worker in submission order while
// different keys proceed in parallel.
type Dispatcher struct {
	queues []chan func()
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given worker count and
// per-worker queue depth
func NewDispatcher(workers, queueDepth int) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if queueDepth <= 0 {
		queueDepth = 64
	}

	d := &Dispatcher{
		queues: make([]chan func(), workers),
	}
	for i := range d.queues {
		queue := make(chan func(), queueDepth)
		d.queues[i] = queue

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for task := range queue {
				task()
			}
		}()
	}
	return d
}

func workerIndex(key string, workers int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32()) % workers
}

// Dispatch enqueues a task on the worker owning the key, blocking while
// that worker's queue is full
func (d *Dispatcher) Dispatch(ctx context.Context, key string, task func()) error {
	queue := d.queues[workerIndex(key, len(d.queues))]

	select {
	case queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for the workers to drain
func (d *Dispatcher) Close() {
	for _, queue := range d.queues {
		close(queue)
	}
	d.wg.Wait()
}
