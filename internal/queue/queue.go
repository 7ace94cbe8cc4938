// Package queue holds raw frames between the feed reader and the drain timer.
package queue

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 1024

// FrameQueue is a bounded FIFO of raw frames.
// Offer and Poll never block, so one producer and one consumer can use it
// concurrently without further locking.
type FrameQueue struct {
	frames chan []byte
}

// New creates a queue that holds at most capacity frames.
func New(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &FrameQueue{
		frames: make(chan []byte, capacity),
	}
}

// Offer enqueues frame. It returns false, and drops the frame, when the queue is full.
func (q *FrameQueue) Offer(frame []byte) bool {
	select {
	case q.frames <- frame:
		return true
	default:
		return false
	}
}

// Poll removes the oldest frame. ok is false when the queue is empty.
func (q *FrameQueue) Poll() (frame []byte, ok bool) {
	select {
	case frame = <-q.frames:
		return frame, true
	default:
		return nil, false
	}
}

// Len returns the number of queued frames.
func (q *FrameQueue) Len() int {
	return len(q.frames)
}

// Cap returns the queue capacity.
func (q *FrameQueue) Cap() int {
	return cap(q.frames)
}

// Drain discards every queued frame and returns how many were removed.
func (q *FrameQueue) Drain() int {
	n := 0
	for {
		if _, ok := q.Poll(); !ok {
			return n
		}
		n++
	}
}
