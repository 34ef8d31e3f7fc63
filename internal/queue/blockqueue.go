// internal/queue/blockqueue.go

// Package queue holds the transient staging area for block requests.
// The queue only represents pending administrative intent, so it is
// deliberately not persisted; losing it on restart is acceptable.
package queue

import "sync"

// BlockQueue collects card ids awaiting a batch block. Safe for
// concurrent use by many request goroutines.
type BlockQueue struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

// NewBlockQueue returns an empty queue.
func NewBlockQueue() *BlockQueue {
	return &BlockQueue{ids: make(map[int64]struct{})}
}

// Enqueue stages a card id. Enqueueing an id already staged is a
// no-op.
func (q *BlockQueue) Enqueue(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids[id] = struct{}{}
}

// Drain atomically removes and returns all staged ids. The set is
// swapped under the lock, so an enqueue racing with a drain lands in
// the fresh set rather than being dropped.
func (q *BlockQueue) Drain() []int64 {
	q.mu.Lock()
	staged := q.ids
	q.ids = make(map[int64]struct{})
	q.mu.Unlock()

	out := make([]int64, 0, len(staged))
	for id := range staged {
		out = append(out, id)
	}
	return out
}

// Len returns the number of staged ids.
func (q *BlockQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
