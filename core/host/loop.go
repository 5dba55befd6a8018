package host

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Loop drives a Host without a terminal. Each Send runs Update, then View,
// then any returned commands, synchronously and one message at a time. It
// serves headless previews and tests. Do not Send from inside a page's Update.
type Loop struct {
	mu    sync.Mutex
	host  *Host
	frame string
	quit  bool
}

func NewLoop(h *Host) *Loop {
	l := &Loop{host: h}
	h.Attach(l)
	return l
}

// Start runs the host's Init commands and renders the first frame.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frame = l.host.View()
	l.run(l.host.Init())
}

func (l *Loop) Send(msg tea.Msg) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dispatch(msg)
}

func (l *Loop) dispatch(msg tea.Msg) {
	if l.quit {
		return
	}
	_, cmd := l.host.Update(msg)
	l.frame = l.host.View()
	l.run(cmd)
}

func (l *Loop) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.QuitMsg:
		l.quit = true
	case tea.BatchMsg:
		for _, c := range msg {
			l.run(c)
		}
	default:
		l.dispatch(msg)
	}
}

// Frame returns the last rendered view.
func (l *Loop) Frame() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

func (l *Loop) Quit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quit
}

// Do runs fn on the loop, serialized with message handling.
func (l *Loop) Do(fn func(h *Host)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.host)
}
