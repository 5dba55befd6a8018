package host

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/previewkit/core/pagestate"
)

// Page is one screen of the hosted app. Update returns true when the page
// wants to be popped.
type Page interface {
	Update(msg tea.Msg) (Page, tea.Cmd, bool)
	View(width, height int) string
	Route() string
	Title() string
}

// Previewable pages announce themselves to the page-state registry on their
// first render after being mounted.
type Previewable interface {
	PageKey() pagestate.Key
}

type mountAware interface {
	attach(m *Mount)
}

// PageBase gives a page access to its own render container. Embed it by value.
type PageBase struct {
	mount *Mount
}

func (b *PageBase) attach(m *Mount) { b.mount = m }

// Container implements pagestate.ContainerProvider.
func (b *PageBase) Container() pagestate.Container {
	if b.mount == nil {
		return nil
	}
	return b.mount
}

func (b *PageBase) Mount() *Mount { return b.mount }

var ErrUnmounted = errors.New("host: page is no longer mounted")

// Mount is the render container of one pushed page.
type Mount struct {
	id        string
	route     string
	host      *Host
	mounted   atomic.Bool
	announced bool

	mu   sync.RWMutex
	page Page
}

func newMount(h *Host, route string, p Page) *Mount {
	m := &Mount{id: uuid.NewString(), route: route, host: h}
	m.setPage(p)
	m.mounted.Store(true)
	return m
}

func (m *Mount) setPage(p Page) {
	m.mu.Lock()
	m.page = p
	m.mu.Unlock()
	if aware, ok := p.(mountAware); ok {
		aware.attach(m)
	}
}

func (m *Mount) ID() string     { return m.id }
func (m *Mount) Route() string  { return m.route }
func (m *Mount) Mounted() bool  { return m.mounted.Load() }
func (m *Mount) Page() Page     { return m.current() }
func (m *Mount) String() string { return m.route + "#" + m.id[:8] }

func (m *Mount) unmount() { m.mounted.Store(false) }

func (m *Mount) current() Page {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.page
}

// Dispatch runs fn against the page on the host's event loop and waits for it
// to finish. Mutating a page from preview code goes through here.
func (m *Mount) Dispatch(ctx context.Context, fn func(Page)) error {
	if !m.Mounted() {
		return ErrUnmounted
	}
	done := make(chan error, 1)
	if err := m.host.send(dispatchMsg{mount: m, fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
