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

type cartLoadedMsg struct {
	lines []repository.CartLine
	err   error
}

// CartPage shows the signed-in user's cart.
type CartPage struct {
	host.PageBase
	ctx    context.Context
	app    *App
	user   repository.User
	lines  []repository.CartLine
	cursor int
}

func (p *CartPage) Route() string          { return RouteCart }
func (p *CartPage) Title() string          { return "Cart" }
func (p *CartPage) PageKey() pagestate.Key { return pagestate.KeyFor[*CartPage]() }

func (p *CartPage) Lines() []repository.CartLine { return p.lines }
func (p *CartPage) Cursor() int                  { return p.cursor }

// SetCursor selects a line, clamped to the cart.
func (p *CartPage) SetCursor(i int) {
	p.cursor = clamp(i, len(p.lines))
}

func (p *CartPage) TotalCents() int64 {
	var total int64
	for _, l := range p.lines {
		total += l.TotalCents()
	}
	return total
}

func (p *CartPage) Update(msg tea.Msg) (host.Page, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case cartLoadedMsg:
		if msg.err != nil {
			return p, host.ErrorCmd(msg.err), false
		}
		p.lines = msg.lines
		p.SetCursor(p.cursor)
		return p, nil, false
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.SetCursor(p.cursor + 1)
		case "k", "up":
			p.SetCursor(p.cursor - 1)
		case "x", "delete":
			if len(p.lines) == 0 {
				return p, nil, false
			}
			return p, p.removeCmd(p.lines[p.cursor].ID), false
		case "esc", "q":
			return p, nil, true
		}
	}
	return p, nil, false
}

func (p *CartPage) removeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := p.app.Cart.Remove(p.ctx, id); err != nil {
			return cartLoadedMsg{err: err}
		}
		lines, err := p.app.Cart.List(p.ctx, p.user.ID)
		return cartLoadedMsg{lines: lines, err: err}
	}
}

func (p *CartPage) View(width, height int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(p.user.DisplayName + "'s cart"))
	b.WriteString("\n\n")
	if len(p.lines) == 0 {
		b.WriteString(mutedStyle.Render("your cart is empty"))
		b.WriteString("\n")
	}
	nameWidth := max(8, width-20)
	for i, l := range p.lines {
		if i >= max(1, height-5) {
			break
		}
		row := fmt.Sprintf("%s x%-3d %10s", padRight(l.Name, nameWidth), l.Quantity, formatCents(l.TotalCents()))
		if i == p.cursor {
			b.WriteString(selectedStyle.Render("> " + row))
		} else {
			b.WriteString(textStyle.Render("  " + row))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d items  total %s\n", len(p.lines), priceStyle.Render(formatCents(p.TotalCents()))))
	b.WriteString(mutedStyle.Render("x: remove  esc: back"))
	return b.String()
}
