package host

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/previewkit/core/pagestate"
	"github.com/jask/previewkit/internal/logging"
)

// RouteFactory builds the page for a named route.
type RouteFactory func(ctx context.Context, args any) (Page, error)

type Routes map[string]RouteFactory

// Sender delivers messages to the running event loop. *tea.Program and Loop
// implement it.
type Sender interface {
	Send(msg tea.Msg)
}

var ErrDetached = errors.New("host: no event loop attached")

type UnknownRouteError struct {
	Route string
}

func (e *UnknownRouteError) Error() string {
	return fmt.Sprintf("host: unknown route %q", e.Route)
}

// Host is the bubbletea model that owns the page stack. Every render ends
// with a flush of the post-frame queue.
type Host struct {
	ctx      context.Context
	routes   Routes
	stack    Stack
	registry *pagestate.Registry
	frames   *pagestate.FrameQueue
	logger   *zap.Logger

	initial   string
	width     int
	height    int
	status    string
	statusErr bool
	quitting  bool

	senderMu sync.RWMutex
	sender   Sender
	top      atomic.Pointer[Mount]
}

type Option func(*Host)

func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.logger = logging.OrNop(l) }
}

// WithInitialRoute navigates to route on Init.
func WithInitialRoute(route string) Option {
	return func(h *Host) { h.initial = route }
}

func WithSize(width, height int) Option {
	return func(h *Host) {
		h.width = width
		h.height = height
	}
}

func New(ctx context.Context, registry *pagestate.Registry, frames *pagestate.FrameQueue, routes Routes, opts ...Option) *Host {
	h := &Host{
		ctx:      ctx,
		routes:   routes,
		registry: registry,
		frames:   frames,
		logger:   zap.NewNop(),
		width:    80,
		height:   24,
		status:   "Ready",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach wires the event loop used by Navigator and Mount.Dispatch.
func (h *Host) Attach(s Sender) {
	h.senderMu.Lock()
	h.sender = s
	h.senderMu.Unlock()
}

func (h *Host) send(msg tea.Msg) error {
	h.senderMu.RLock()
	s := h.sender
	h.senderMu.RUnlock()
	if s == nil {
		return ErrDetached
	}
	s.Send(msg)
	return nil
}

// Top returns the mounted top page container, safe from any goroutine.
func (h *Host) Top() *Mount {
	return h.top.Load()
}

func (h *Host) Navigator() *Navigator {
	return &Navigator{host: h}
}

func (h *Host) Init() tea.Cmd {
	if h.initial == "" {
		return nil
	}
	return NavigateCmd(h.initial, nil)
}

func (h *Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		h.width, h.height = m.Width, m.Height
		return h, nil
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			h.quitting = true
			return h, tea.Quit
		}
		return h, h.updateTop(msg)
	case NavigateMsg:
		err := h.navigate(m)
		if m.Done != nil {
			m.Done <- err
		}
		return h, nil
	case PushMsg:
		if m.Page != nil {
			h.push(m.Page.Route(), m.Page)
		}
		return h, nil
	case PopMsg:
		h.pop()
		return h, nil
	case StatusMsg:
		h.status, h.statusErr = m.Text, m.IsErr
		return h, nil
	case dispatchMsg:
		var err error
		if m.mount.Mounted() {
			m.fn(m.mount.current())
		} else {
			err = ErrUnmounted
		}
		if m.done != nil {
			m.done <- err
		}
		return h, nil
	}
	return h, h.updateTop(msg)
}

func (h *Host) updateTop(msg tea.Msg) tea.Cmd {
	top := h.stack.Top()
	if top == nil {
		return nil
	}
	next, cmd, done := top.current().Update(msg)
	if done {
		h.pop()
		return cmd
	}
	if next != nil {
		replaced := isReplacement(top.current(), next)
		top.setPage(next)
		if replaced {
			top.announced = false
		}
	}
	return cmd
}

// isReplacement reports whether next is a different page from prev. Pointer
// pages are compared by address; a value page of the same type is the same
// page updated in place.
func isReplacement(prev, next Page) bool {
	pt, nt := reflect.TypeOf(prev), reflect.TypeOf(next)
	if pt != nt {
		return true
	}
	if nt.Kind() == reflect.Pointer {
		return prev != next
	}
	return false
}

func (h *Host) navigate(m NavigateMsg) error {
	factory, ok := h.routes[m.Route]
	if !ok {
		err := &UnknownRouteError{Route: m.Route}
		h.status, h.statusErr = err.Error(), true
		h.logger.Warn("navigate failed", zap.String("route", m.Route), zap.Error(err))
		return err
	}
	page, err := factory(h.ctx, m.Args)
	if err != nil {
		err = fmt.Errorf("build %s: %w", m.Route, err)
		h.status, h.statusErr = err.Error(), true
		h.logger.Warn("navigate failed", zap.String("route", m.Route), zap.Error(err))
		return err
	}
	if m.Replace {
		h.pop()
	}
	h.push(m.Route, page)
	h.status, h.statusErr = page.Title(), false
	return nil
}

func (h *Host) push(route string, p Page) {
	mount := newMount(h, route, p)
	h.stack.Push(mount)
	h.top.Store(mount)
	h.logger.Debug("page mounted", zap.String("route", route), zap.String("mount", mount.ID()))
}

func (h *Host) pop() {
	m := h.stack.Pop()
	if m == nil {
		return
	}
	m.unmount()
	h.top.Store(h.stack.Top())
	h.logger.Debug("page unmounted", zap.String("route", m.Route()), zap.String("mount", m.ID()))
}

func (h *Host) View() string {
	if h.quitting {
		return ""
	}
	defer h.frames.Flush()

	bodyHeight := max(1, h.height-2)
	var title, body string
	if top := h.stack.Top(); top != nil {
		page := top.current()
		title = page.Title()
		body = page.View(h.width, bodyHeight)
		h.announce(top, page)
	} else {
		body = emptyStyle.Render("nothing mounted")
	}
	view := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		body,
		h.statusLine(),
	)
	return appStyle.MaxWidth(max(1, h.width)).Render(view)
}

// announce reports a previewable page on its first render after mount. The
// registry applies it in the flush that ends this View.
func (h *Host) announce(m *Mount, page Page) {
	if m.announced {
		return
	}
	m.announced = true
	pv, ok := page.(Previewable)
	if !ok || h.registry == nil {
		return
	}
	key := pv.PageKey()
	h.registry.RegisterContainer(key, m)
	h.registry.RegisterInstance(key, page)
}

func (h *Host) statusLine() string {
	style := statusBarStyle
	if h.statusErr {
		style = statusErrBarStyle
	}
	return style.Width(max(1, h.width)).Render(h.status)
}

// Routes reports the mounted routes bottom to top. Call from the event loop.
func (h *Host) Routes() []string {
	return h.stack.Routes()
}
