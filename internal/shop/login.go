package shop

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/previewkit/core/host"
	"github.com/jask/previewkit/core/pagestate"
	"github.com/jask/previewkit/internal/database/repository"
)

type signedInMsg struct {
	user repository.User
	err  error
}

// LoginPage asks for a username and password.
type LoginPage struct {
	host.PageBase
	ctx    context.Context
	app    *App
	inputs []textinput.Model
	focus  int
	err    error
	busy   bool
}

func NewLoginPage(ctx context.Context, app *App, username string) *LoginPage {
	user := newInput("Username: ")
	user.SetValue(username)
	pass := newInput("Password: ")
	pass.EchoMode = textinput.EchoPassword
	p := &LoginPage{ctx: ctx, app: app, inputs: []textinput.Model{user, pass}}
	if username != "" {
		p.focus = 1
	}
	p.inputs[p.focus].Focus()
	return p
}

func newInput(prompt string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.CharLimit = 64
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func (p *LoginPage) Route() string          { return RouteLogin }
func (p *LoginPage) Title() string          { return "Sign in" }
func (p *LoginPage) PageKey() pagestate.Key { return pagestate.KeyFor[*LoginPage]() }

func (p *LoginPage) Username() string { return p.inputs[0].Value() }
func (p *LoginPage) Focus() int       { return p.focus }
func (p *LoginPage) Err() error       { return p.err }

// SetPassword fills the password field and focuses it.
func (p *LoginPage) SetPassword(pw string) {
	p.inputs[1].SetValue(pw)
	p.setFocus(1)
}

func (p *LoginPage) setFocus(i int) {
	p.inputs[p.focus].Blur()
	p.focus = (i + len(p.inputs)) % len(p.inputs)
	p.inputs[p.focus].Focus()
}

func (p *LoginPage) Update(msg tea.Msg) (host.Page, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case signedInMsg:
		p.busy = false
		if msg.err != nil {
			p.err = msg.err
			p.inputs[1].SetValue("")
			p.setFocus(1)
			return p, nil, false
		}
		return p, func() tea.Msg { return host.NavigateMsg{Route: RouteHome, Replace: true} }, false
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			dir := 1
			if s := msg.String(); s == "shift+tab" || s == "up" {
				dir = -1
			}
			p.setFocus(p.focus + dir)
			return p, nil, false
		case "enter":
			if p.busy {
				return p, nil, false
			}
			p.busy = true
			p.err = nil
			username := strings.TrimSpace(p.inputs[0].Value())
			password := p.inputs[1].Value()
			return p, func() tea.Msg {
				u, err := p.app.SignIn(p.ctx, username, password)
				return signedInMsg{user: u, err: err}
			}, false
		}
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return p, cmd, false
}

func (p *LoginPage) View(width, height int) string {
	lines := []string{headerStyle.Render("Welcome to the tea shop"), ""}
	for _, in := range p.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "")
	if p.err != nil {
		lines = append(lines, errorStyle.Render(p.err.Error()))
	}
	lines = append(lines, mutedStyle.Render("enter: sign in  tab: next field"))
	return boxStyle.Width(max(20, min(width-2, 48))).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
