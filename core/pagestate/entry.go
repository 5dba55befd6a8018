package pagestate

import "reflect"

// Key identifies one previewable page type.
type Key string

// KeyFor derives the key of page type T.
func KeyFor[T any]() Key {
	return Key(reflect.TypeOf((*T)(nil)).Elem().String())
}

// Container is a render container handle owned by the host framework.
type Container interface {
	Mounted() bool
}

// ContainerProvider is implemented by instances that can reach their own
// render container.
type ContainerProvider interface {
	Container() Container
}

// EntryState is a snapshot of one registry entry.
type EntryState struct {
	Key          Key
	HasContainer bool
	HasInstance  bool
	Ready        bool
	Live         bool
	Generation   uint64
}

// containerEpoch and instanceEpoch are the reset epochs each handle was
// announced in.
type entry struct {
	container      Container
	containerEpoch uint64
	instance       any
	instanceEpoch  uint64
	ready          *Signal[struct{}]
	wake           chan struct{}
	generation     uint64
}

func newEntry() *entry {
	return &entry{
		ready: NewSignal[struct{}](),
		wake:  make(chan struct{}),
	}
}

// notify wakes every awaiter so it re-reads the entry.
func (e *entry) notify() {
	close(e.wake)
	e.wake = make(chan struct{})
}

// currentInstance returns the instance only if it was announced in epoch.
func (e *entry) currentInstance(epoch uint64) (any, bool) {
	if e.instance == nil || e.instanceEpoch != epoch {
		return nil, false
	}
	return e.instance, true
}

// resolveContainer prefers a container announced in epoch, then the container
// of an instance announced in epoch. Handles from earlier runs never resolve.
func (e *entry) resolveContainer(epoch uint64) (Container, bool) {
	if e.container != nil && e.containerEpoch == epoch {
		return e.container, true
	}
	if inst, ok := e.currentInstance(epoch); ok {
		if p, ok := inst.(ContainerProvider); ok {
			if c := p.Container(); c != nil {
				return c, true
			}
		}
	}
	return nil, false
}

func (e *entry) live() bool {
	return containerLive(e.container) || instanceLive(e.instance)
}

func (e *entry) state(key Key) EntryState {
	return EntryState{
		Key:          key,
		HasContainer: e.container != nil,
		HasInstance:  e.instance != nil,
		Ready:        e.ready.Fulfilled(),
		Live:         e.live(),
		Generation:   e.generation,
	}
}

func containerLive(c Container) bool {
	return c != nil && c.Mounted()
}

// instanceLive asks the instance itself, then its container. An instance
// without either probe counts as live while it is registered.
func instanceLive(v any) bool {
	switch h := v.(type) {
	case nil:
		return false
	case interface{ Mounted() bool }:
		return h.Mounted()
	case ContainerProvider:
		return containerLive(h.Container())
	default:
		return true
	}
}
