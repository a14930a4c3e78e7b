package queue

// Queue is a bounded FIFO shared between one or more producers and a consumer.
// Implementations must be thread-safe and must never block.
type Queue interface {
	// Enqueue adds an item to the back of the queue. It reports false and drops
	// the item when the queue is full.
	Enqueue(item interface{}) bool
	// Dequeue removes and returns the item at the front of the queue.
	// ok is false when the queue is empty.
	Dequeue() (item interface{}, ok bool)
	// Size returns the number of queued items.
	Size() int
	// ClearQueue discards every queued item.
	ClearQueue()
}
