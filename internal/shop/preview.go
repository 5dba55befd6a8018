package shop

import (
	"context"

	"github.com/jask/previewkit/core/host"
	"github.com/jask/previewkit/core/preview"
	"github.com/jask/previewkit/internal/credentials"
)

// LoginParams opens the login page, optionally prefilled with a test user.
type LoginParams struct {
	User     string
	Password bool
}

// HomeParams signs User in with Items lines in the cart.
type HomeParams struct {
	User   string
	Items  int
	Select int
}

// CartParams signs User in with Items lines in the cart and Select highlighted.
type CartParams struct {
	User   string
	Items  int
	Select int
}

// LoginPreview signs out and shows the login page.
type LoginPreview struct {
	App   *App
	Creds *credentials.Store
}

func (c LoginPreview) Setup(ctx context.Context, _ LoginParams) error {
	return c.App.SignOut(ctx)
}

func (c LoginPreview) Navigate(ctx context.Context, nav preview.Navigator, p LoginParams) error {
	var username string
	if p.User != "" {
		cred, err := c.Creds.Lookup(p.User)
		if err != nil {
			return err
		}
		username = cred.Username
	}
	return nav.Navigate(ctx, RouteLogin, username)
}

func (c LoginPreview) AfterRender(ctx context.Context, page *LoginPage, p LoginParams) error {
	if p.User == "" || !p.Password {
		return nil
	}
	cred, err := c.Creds.Lookup(p.User)
	if err != nil {
		return err
	}
	return page.Mount().Dispatch(ctx, func(hp host.Page) {
		hp.(*LoginPage).SetPassword(cred.Password)
	})
}

// HomePreview shows the catalog as a signed-in user.
type HomePreview struct {
	App   *App
	Creds *credentials.Store
}

func (c HomePreview) Setup(ctx context.Context, p HomeParams) error {
	return signInWithCart(ctx, c.App, c.Creds, p.User, p.Items)
}

func (c HomePreview) Navigate(ctx context.Context, nav preview.Navigator, _ HomeParams) error {
	return nav.Navigate(ctx, RouteHome, nil)
}

func (c HomePreview) AfterRender(ctx context.Context, page *HomePage, p HomeParams) error {
	return page.Mount().Dispatch(ctx, func(hp host.Page) {
		hp.(*HomePage).SetCursor(p.Select)
	})
}

// CartPreview shows the cart as a signed-in user.
type CartPreview struct {
	App   *App
	Creds *credentials.Store
}

func (c CartPreview) Setup(ctx context.Context, p CartParams) error {
	return signInWithCart(ctx, c.App, c.Creds, p.User, p.Items)
}

func (c CartPreview) Navigate(ctx context.Context, nav preview.Navigator, _ CartParams) error {
	return nav.Navigate(ctx, RouteCart, nil)
}

func (c CartPreview) AfterRender(ctx context.Context, page *CartPage, p CartParams) error {
	return page.Mount().Dispatch(ctx, func(hp host.Page) {
		hp.(*CartPage).SetCursor(p.Select)
	})
}

func signInWithCart(ctx context.Context, app *App, creds *credentials.Store, key string, items int) error {
	cred, err := creds.Lookup(key)
	if err != nil {
		return err
	}
	u, err := app.SignIn(ctx, cred.Username, cred.Password)
	if err != nil {
		return err
	}
	return app.FillCart(ctx, u.ID, items)
}
