package shop

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/previewkit/core/host"
	"github.com/jask/previewkit/core/pagestate"
	"github.com/jask/previewkit/internal/database/repository"
)

type cartCountMsg struct {
	count int
	err   error
}

// HomePage lists the catalog for the signed-in user.
type HomePage struct {
	host.PageBase
	ctx      context.Context
	app      *App
	user     repository.User
	products []repository.Product
	count    int
	cursor   int
}

func (p *HomePage) Route() string          { return RouteHome }
func (p *HomePage) Title() string          { return "Catalog" }
func (p *HomePage) PageKey() pagestate.Key { return pagestate.KeyFor[*HomePage]() }

func (p *HomePage) User() repository.User { return p.user }
func (p *HomePage) CartCount() int        { return p.count }
func (p *HomePage) Cursor() int           { return p.cursor }

// SetCursor moves the selection, clamped to the catalog.
func (p *HomePage) SetCursor(i int) {
	p.cursor = clamp(i, len(p.products))
}

func (p *HomePage) Update(msg tea.Msg) (host.Page, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case cartCountMsg:
		if msg.err != nil {
			return p, host.ErrorCmd(msg.err), false
		}
		p.count = msg.count
		return p, nil, false
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.SetCursor(p.cursor + 1)
		case "k", "up":
			p.SetCursor(p.cursor - 1)
		case "a", "enter":
			if len(p.products) == 0 {
				return p, nil, false
			}
			product := p.products[p.cursor]
			return p, tea.Batch(p.addCmd(product), host.StatusCmd("Added "+product.Name)), false
		case "c":
			return p, host.NavigateCmd(RouteCart, nil), false
		case "L":
			return p, p.signOutCmd(), false
		}
	}
	return p, nil, false
}

func (p *HomePage) addCmd(product repository.Product) tea.Cmd {
	return func() tea.Msg {
		if _, err := p.app.Cart.Add(p.ctx, p.user.ID, product.ID, 1); err != nil {
			return cartCountMsg{err: err}
		}
		lines, err := p.app.Cart.List(p.ctx, p.user.ID)
		return cartCountMsg{count: len(lines), err: err}
	}
}

func (p *HomePage) signOutCmd() tea.Cmd {
	return func() tea.Msg {
		if err := p.app.SignOut(p.ctx); err != nil {
			return host.StatusMsg{Text: err.Error(), IsErr: true}
		}
		return host.NavigateMsg{Route: RouteLogin, Replace: true}
	}
}

func (p *HomePage) View(width, height int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Hello, " + p.user.DisplayName))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("cart: %d", p.count)))
	b.WriteString("\n\n")
	nameWidth := max(8, width-14)
	for i, pr := range p.products {
		if i >= max(1, height-4) {
			break
		}
		row := fmt.Sprintf("%s %10s", padRight(pr.Name, nameWidth), formatCents(pr.PriceCents))
		if i == p.cursor {
			b.WriteString(selectedStyle.Render("> " + row))
		} else {
			b.WriteString(textStyle.Render("  " + row))
		}
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("a: add  c: cart  L: sign out"))
	return b.String()
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
