package pagestate

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jask/previewkit/internal/logging"
	"github.com/jask/previewkit/internal/telemetry"
)

// Registry maps page keys to their latest render handles.
type Registry struct {
	mu      sync.Mutex
	entries map[Key]*entry
	epochs  map[Key]uint64 // resets per key, kept across pruning
	frames  FrameScheduler
	logger  *zap.Logger
	metrics telemetry.Recorder
}

type Option func(*Registry)

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = logging.OrNop(l) }
}

func WithMetrics(m telemetry.Recorder) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New returns an empty registry that applies announcements through frames.
func New(frames FrameScheduler, opts ...Option) *Registry {
	if frames == nil {
		frames = Immediate{}
	}
	r := &Registry{
		entries: make(map[Key]*entry),
		epochs:  make(map[Key]uint64),
		frames:  frames,
		logger:  zap.NewNop(),
		metrics: telemetry.Noop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) entryLocked(key Key) *entry {
	e, ok := r.entries[key]
	if !ok {
		e = newEntry()
		r.entries[key] = e
	}
	return e
}

// Entry returns the state of key's entry, creating an empty one if needed.
func (r *Registry) Entry(key Key) EntryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entryLocked(key).state(key)
}

// Keys lists the keys currently in the table.
func (r *Registry) Keys() []Key {
	r.mu.Lock()
	keys := make([]Key, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// RegisterContainer records c for key after the current frame and completes
// the entry's readiness signal.
func (r *Registry) RegisterContainer(key Key, c Container) {
	if c == nil {
		return
	}
	r.announce(key, "container", func(e *entry, epoch uint64) { e.container, e.containerEpoch = c, epoch })
}

// RegisterInstance is RegisterContainer for the live component instance.
func (r *Registry) RegisterInstance(key Key, instance any) {
	if instance == nil {
		return
	}
	r.announce(key, "instance", func(e *entry, epoch uint64) { e.instance, e.instanceEpoch = instance, epoch })
}

// announce captures the reset epoch at announcement time. If the entry is
// reset before the frame ends, the handle is still recorded under its old
// epoch and the fresh signal stays pending: that render belongs to the
// previous run.
func (r *Registry) announce(key Key, kind string, apply func(*entry, uint64)) {
	r.mu.Lock()
	epoch := r.epochs[key]
	r.mu.Unlock()

	r.frames.AddPostFrameCallback(func() {
		r.mu.Lock()
		e := r.entryLocked(key)
		apply(e, epoch)
		e.generation++
		fulfilled := false
		if r.epochs[key] == epoch {
			fulfilled = e.ready.Fulfill(struct{}{})
		}
		gen := e.generation
		e.notify()
		r.mu.Unlock()

		r.logger.Debug("page announced",
			zap.String("page", string(key)),
			zap.String("kind", kind),
			zap.Uint64("generation", gen),
			zap.Bool("fulfilled", fulfilled),
		)
		r.metrics.RecordRegistration(context.Background(), string(key), kind)
	})
}

// Context waits until key's page has rendered and returns its container. When
// only an instance was announced, the container is taken from the instance.
func (r *Registry) Context(ctx context.Context, key Key) (Container, error) {
	v, err := r.await(ctx, key, func(e *entry, epoch uint64) (any, bool) { return e.resolveContainer(epoch) })
	if err != nil {
		return nil, err
	}
	return v.(Container), nil
}

// Instance waits until key's page has announced an instance since the last
// reset. An instance left over from an earlier run never resolves; callers
// bound the wait with ctx.
func (r *Registry) Instance(ctx context.Context, key Key) (any, error) {
	return r.await(ctx, key, func(e *entry, epoch uint64) (any, bool) { return e.currentInstance(epoch) })
}

func (r *Registry) await(ctx context.Context, key Key, pick func(*entry, uint64) (any, bool)) (any, error) {
	start := time.Now()
	for {
		r.mu.Lock()
		e := r.entryLocked(key)
		var pending <-chan struct{}
		if e.ready.Fulfilled() {
			if v, ok := pick(e, r.epochs[key]); ok {
				r.mu.Unlock()
				r.metrics.RecordAwait(ctx, string(key), time.Since(start), nil)
				return v, nil
			}
		} else {
			pending = e.ready.Done()
		}
		wake := e.wake
		r.mu.Unlock()

		select {
		case <-pending:
		case <-wake:
		case <-ctx.Done():
			r.metrics.RecordAwait(ctx, string(key), time.Since(start), ctx.Err())
			return nil, ctx.Err()
		}
	}
}

// ResetEntry replaces key's readiness signal with a pending one. Handles are
// kept. Entries that went inactive are pruned on the way out.
func (r *Registry) ResetEntry(key Key) {
	r.mu.Lock()
	r.entryLocked(key).ready = NewSignal[struct{}]()
	r.epochs[key]++
	removed := r.pruneLocked()
	r.mu.Unlock()

	r.logger.Debug("entry reset", zap.String("page", string(key)), zap.Int("pruned", removed))
	r.metrics.RecordPrune(context.Background(), removed)
}

// PruneInactive drops entries with neither a mounted container nor a live
// instance and returns how many were removed.
func (r *Registry) PruneInactive() int {
	r.mu.Lock()
	removed := r.pruneLocked()
	r.mu.Unlock()
	r.metrics.RecordPrune(context.Background(), removed)
	return removed
}

// pruneLocked wakes the awaiters of a dropped entry; they re-resolve against
// whichever entry exists for the key next.
func (r *Registry) pruneLocked() int {
	removed := 0
	for key, e := range r.entries {
		if e.live() {
			continue
		}
		delete(r.entries, key)
		e.notify()
		removed++
	}
	return removed
}

// HandleTypeError reports an instance handle of an unexpected type.
type HandleTypeError struct {
	Key  Key
	Want string
	Got  string
}

func (e *HandleTypeError) Error() string {
	return fmt.Sprintf("pagestate: %s instance is %s, want %s", e.Key, e.Got, e.Want)
}

// State waits for key's instance and asserts it to T.
func State[T any](ctx context.Context, r *Registry, key Key) (T, error) {
	var zero T
	v, err := r.Instance(ctx, key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &HandleTypeError{Key: key, Want: reflect.TypeOf((*T)(nil)).Elem().String(), Got: fmt.Sprintf("%T", v)}
	}
	return t, nil
}
