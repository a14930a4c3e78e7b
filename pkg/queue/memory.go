package queue

import "sync"

const (
	// QueueBufferSize is the capacity used when none is given
	QueueBufferSize = 1024
)

// InMemoryQueue implements a bounded in-memory queue.
// New items are dropped once it is full.
type InMemoryQueue struct {
	ch   chan interface{}
	lock sync.RWMutex
}

// NewInMemoryQueue creates a new queue holding at most size items.
// A size below 1 uses QueueBufferSize.
func NewInMemoryQueue(size int) *InMemoryQueue {
	if size < 1 {
		size = QueueBufferSize
	}
	return &InMemoryQueue{
		ch: make(chan interface{}, size),
	}
}

// Enqueue adds an item to the end of the queue, dropping it if the queue is full.
func (q *InMemoryQueue) Enqueue(item interface{}) bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	select {
	case q.ch <- item:
		return true
	default:
		return false
	}
}

// Dequeue removes and returns the item from the front of the queue.
func (q *InMemoryQueue) Dequeue() (interface{}, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	select {
	case item := <-q.ch:
		return item, true
	default:
		return nil, false
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue) Size() int {
	q.lock.RLock()
	defer q.lock.RUnlock()
	return len(q.ch)
}

// ClearQueue clears all messages from the queue.
func (q *InMemoryQueue) ClearQueue() {
	q.lock.Lock()
	defer q.lock.Unlock()

	for len(q.ch) > 0 {
		<-q.ch
	}
}
