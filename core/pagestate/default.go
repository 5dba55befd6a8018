package pagestate

import (
	"errors"
	"sync"
)

// ErrNotInitialized is returned by Default before Initialize.
var ErrNotInitialized = errors.New("pagestate: registry not initialized")

var (
	defaultMu       sync.RWMutex
	defaultRegistry *Registry
)

// Initialize installs the process-wide registry, replacing any previous one.
func Initialize(frames FrameScheduler, opts ...Option) *Registry {
	r := New(frames, opts...)
	defaultMu.Lock()
	defaultRegistry = r
	defaultMu.Unlock()
	return r
}

// Default returns the process-wide registry.
func Default() (*Registry, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultRegistry == nil {
		return nil, ErrNotInitialized
	}
	return defaultRegistry, nil
}

// Teardown drops the process-wide registry.
func Teardown() {
	defaultMu.Lock()
	defaultRegistry = nil
	defaultMu.Unlock()
}
