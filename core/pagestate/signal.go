package pagestate

import (
	"context"
	"sync"
)

// Signal is a one-shot completion value. The first Fulfill wins; a fulfilled
// signal is never reset, callers swap in a fresh one with NewSignal instead.
type Signal[T any] struct {
	mu    sync.Mutex
	done  chan struct{}
	value T
	set   bool
}

func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{done: make(chan struct{})}
}

// Fulfill stores v and releases every waiter. It reports whether this call
// completed the signal; later calls are no-ops.
func (s *Signal[T]) Fulfill(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return false
	}
	s.value = v
	s.set = true
	close(s.done)
	return true
}

func (s *Signal[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Signal[T]) Fulfilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

func (s *Signal[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set
}

// Wait blocks until the signal is fulfilled or ctx is done.
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-s.done:
		v, _ := s.Value()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
