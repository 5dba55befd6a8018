package host

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/previewkit/core/pagestate"
)

type counterPage struct {
	PageBase
	route string
	hits  int
}

func (p *counterPage) Update(msg tea.Msg) (Page, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if km.String() == "esc" {
			return p, nil, true
		}
		p.hits++
	}
	return p, nil, false
}

func (p *counterPage) View(int, int) string   { return fmt.Sprintf("hits=%d", p.hits) }
func (p *counterPage) Route() string          { return p.route }
func (p *counterPage) Title() string          { return "Counter" }
func (p *counterPage) PageKey() pagestate.Key { return pagestate.KeyFor[*counterPage]() }

type plainPage struct{}

func (p *plainPage) Update(tea.Msg) (Page, tea.Cmd, bool) { return p, nil, false }
func (p *plainPage) View(int, int) string                 { return "plain" }
func (p *plainPage) Route() string                        { return "plain" }
func (p *plainPage) Title() string                        { return "Plain" }

type valuePage struct {
	lines  []string
	cursor int
}

func (p valuePage) Update(msg tea.Msg) (Page, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok && km.Type == tea.KeyDown {
		p.cursor = min(p.cursor+1, len(p.lines)-1)
	}
	return p, nil, false
}

func (p valuePage) View(int, int) string   { return "at " + p.lines[p.cursor] }
func (p valuePage) Route() string          { return "value" }
func (p valuePage) Title() string          { return "Value" }
func (p valuePage) PageKey() pagestate.Key { return pagestate.KeyFor[valuePage]() }

func newTestHost(t *testing.T) (*Host, *Loop, *pagestate.Registry) {
	t.Helper()
	frames := pagestate.NewFrameQueue()
	reg := pagestate.New(frames)
	routes := Routes{
		"counter": func(ctx context.Context, args any) (Page, error) {
			return &counterPage{route: "counter"}, nil
		},
		"plain": func(ctx context.Context, args any) (Page, error) {
			return &plainPage{}, nil
		},
		"value": func(ctx context.Context, args any) (Page, error) {
			return valuePage{lines: []string{"a", "b", "c"}}, nil
		},
		"broken": func(ctx context.Context, args any) (Page, error) {
			return nil, errors.New("no data")
		},
	}
	h := New(context.Background(), reg, frames, routes)
	loop := NewLoop(h)
	loop.Start()
	return h, loop, reg
}

func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStackPushPop(t *testing.T) {
	var s Stack
	require.Nil(t, s.Top())
	s.Push(nil)
	require.Equal(t, 0, s.Len())

	a := &Mount{route: "a"}
	b := &Mount{route: "b"}
	s.Push(a)
	s.Push(b)
	require.Equal(t, []string{"a", "b"}, s.Routes())
	require.Same(t, b, s.Pop())
	require.Same(t, a, s.Top())
	require.Same(t, a, s.Pop())
	require.Nil(t, s.Pop())
}

func TestNavigateAnnouncesAfterRender(t *testing.T) {
	h, loop, reg := newTestHost(t)
	key := pagestate.KeyFor[*counterPage]()

	require.NoError(t, h.Navigator().Navigate(withTimeout(t), "counter", nil))
	require.Contains(t, loop.Frame(), "hits=0")

	c, err := reg.Context(withTimeout(t), key)
	require.NoError(t, err)
	mount, ok := c.(*Mount)
	require.True(t, ok)
	require.Equal(t, "counter", mount.Route())
	require.True(t, mount.Mounted())

	page, err := pagestate.State[*counterPage](withTimeout(t), reg, key)
	require.NoError(t, err)
	require.Same(t, mount, page.Mount())
	require.Same(t, mount, h.Navigator().Current())
}

func TestPlainPagesAreNotAnnounced(t *testing.T) {
	h, _, reg := newTestHost(t)
	require.NoError(t, h.Navigator().Navigate(withTimeout(t), "plain", nil))
	require.Empty(t, reg.Keys())
}

func TestNavigateUnknownRoute(t *testing.T) {
	h, loop, _ := newTestHost(t)
	err := h.Navigator().Navigate(withTimeout(t), "missing", nil)
	var routeErr *UnknownRouteError
	require.ErrorAs(t, err, &routeErr)
	require.Equal(t, "missing", routeErr.Route)
	require.Contains(t, loop.Frame(), `unknown route "missing"`)
	require.Nil(t, h.Navigator().Current())
}

func TestNavigateFactoryError(t *testing.T) {
	h, _, _ := newTestHost(t)
	err := h.Navigator().Navigate(withTimeout(t), "broken", nil)
	require.ErrorContains(t, err, "build broken: no data")
}

func TestRerenderDoesNotReannounce(t *testing.T) {
	h, loop, reg := newTestHost(t)
	key := pagestate.KeyFor[*counterPage]()
	require.NoError(t, h.Navigator().Navigate(withTimeout(t), "counter", nil))
	require.True(t, reg.Entry(key).Ready)

	reg.ResetEntry(key)
	loop.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.Contains(t, loop.Frame(), "hits=1")
	require.False(t, reg.Entry(key).Ready, "a still-mounted page must not refresh readiness")

	require.NoError(t, h.Navigator().Navigate(withTimeout(t), "counter", nil))
	require.True(t, reg.Entry(key).Ready)
}

func TestPopUnmountsAndAllowsPrune(t *testing.T) {
	h, loop, reg := newTestHost(t)
	key := pagestate.KeyFor[*counterPage]()
	require.NoError(t, h.Navigator().Navigate(withTimeout(t), "counter", nil))
	c, err := reg.Context(withTimeout(t), key)
	require.NoError(t, err)

	loop.Send(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, c.Mounted())
	require.Nil(t, h.Navigator().Current())
	require.Equal(t, 1, reg.PruneInactive())
}

func TestDispatchMutatesOnLoop(t *testing.T) {
	h, loop, reg := newTestHost(t)
	require.NoError(t, h.Navigator().Navigate(withTimeout(t), "counter", nil))
	page, err := pagestate.State[*counterPage](withTimeout(t), reg, pagestate.KeyFor[*counterPage]())
	require.NoError(t, err)

	err = page.Mount().Dispatch(withTimeout(t), func(p Page) {
		p.(*counterPage).hits = 41
	})
	require.NoError(t, err)
	loop.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.Contains(t, loop.Frame(), "hits=42")

	loop.Send(PopMsg{})
	require.ErrorIs(t, page.Mount().Dispatch(withTimeout(t), func(Page) {}), ErrUnmounted)
}

func TestDetachedHost(t *testing.T) {
	frames := pagestate.NewFrameQueue()
	h := New(context.Background(), pagestate.New(frames), frames, nil)
	require.ErrorIs(t, h.Navigator().Navigate(withTimeout(t), "counter", nil), ErrDetached)
}

func TestInitialRouteAndQuit(t *testing.T) {
	frames := pagestate.NewFrameQueue()
	reg := pagestate.New(frames)
	h := New(context.Background(), reg, frames, Routes{
		"plain": func(context.Context, any) (Page, error) { return &plainPage{}, nil },
	}, WithInitialRoute("plain"), WithSize(40, 10))
	loop := NewLoop(h)
	loop.Start()
	require.Contains(t, loop.Frame(), "plain")
	require.Equal(t, []string{"plain"}, h.Routes())

	loop.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.True(t, loop.Quit())
}

func TestValuePageUpdatesInPlace(t *testing.T) {
	h, loop, reg := newTestHost(t)
	key := pagestate.KeyFor[valuePage]()
	require.NoError(t, h.Navigator().Navigate(withTimeout(t), "value", nil))
	require.True(t, reg.Entry(key).Ready)
	gen := reg.Entry(key).Generation

	reg.ResetEntry(key)
	loop.Send(tea.KeyMsg{Type: tea.KeyDown})
	require.Contains(t, loop.Frame(), "at b")
	st := reg.Entry(key)
	require.False(t, st.Ready, "an in-place update is not a new page")
	require.Equal(t, gen, st.Generation)
}

func TestIsReplacement(t *testing.T) {
	a, b := &counterPage{}, &counterPage{}
	require.False(t, isReplacement(a, a))
	require.True(t, isReplacement(a, b))
	require.True(t, isReplacement(a, &plainPage{}))
	require.False(t, isReplacement(valuePage{lines: []string{"a"}}, valuePage{lines: []string{"b"}}))
	require.True(t, isReplacement(valuePage{}, a))
}
