package shop

import (
	"context"
	"fmt"

	"github.com/jask/previewkit/core/host"
)

const (
	RouteLogin = "login"
	RouteHome  = "home"
	RouteCart  = "cart"
)

// Routes returns the page factories for the host. Home and cart require a
// signed-in user.
func Routes(app *App) host.Routes {
	return host.Routes{
		RouteLogin: func(ctx context.Context, args any) (host.Page, error) {
			username, _ := args.(string)
			return NewLoginPage(ctx, app, username), nil
		},
		RouteHome: func(ctx context.Context, _ any) (host.Page, error) {
			u, err := app.CurrentUser(ctx)
			if err != nil {
				return nil, err
			}
			products, err := app.Products.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("load catalog: %w", err)
			}
			lines, err := app.Cart.List(ctx, u.ID)
			if err != nil {
				return nil, fmt.Errorf("load cart: %w", err)
			}
			return &HomePage{ctx: ctx, app: app, user: u, products: products, count: len(lines)}, nil
		},
		RouteCart: func(ctx context.Context, _ any) (host.Page, error) {
			u, err := app.CurrentUser(ctx)
			if err != nil {
				return nil, err
			}
			lines, err := app.Cart.List(ctx, u.ID)
			if err != nil {
				return nil, fmt.Errorf("load cart: %w", err)
			}
			return &CartPage{ctx: ctx, app: app, user: u, lines: lines}, nil
		},
	}
}
