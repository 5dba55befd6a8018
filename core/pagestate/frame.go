package pagestate

import "sync"

// FrameScheduler runs callbacks once the current render pass has finished.
type FrameScheduler interface {
	AddPostFrameCallback(fn func())
}

// FrameQueue collects post-frame callbacks until the host calls Flush at the end
// of a render pass.
type FrameQueue struct {
	mu      sync.Mutex
	pending []func()
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

func (q *FrameQueue) AddPostFrameCallback(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Flush runs the callbacks queued before the call, in order. Callbacks added
// while flushing wait for the next frame.
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Immediate runs callbacks synchronously. Only for headless tooling with no
// render loop.
type Immediate struct{}

func (Immediate) AddPostFrameCallback(fn func()) {
	if fn != nil {
		fn()
	}
}
