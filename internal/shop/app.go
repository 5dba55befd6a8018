// Package shop is a small storefront TUI: sign in, browse the catalog, manage
// a cart. It is the app the preview harness drives.
package shop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/jask/previewkit/internal/credentials"
	"github.com/jask/previewkit/internal/database"
	"github.com/jask/previewkit/internal/database/repository"
	"github.com/jask/previewkit/internal/logging"
)

var ErrNotSignedIn = errors.New("shop: not signed in")

// App bundles the repositories the pages read and write.
type App struct {
	Users    *repository.UserRepo
	Products *repository.ProductRepo
	Cart     *repository.CartRepo
	Sessions *repository.SessionRepo
	logger   *zap.Logger
}

func NewApp(db *sql.DB, logger *zap.Logger) *App {
	return &App{
		Users:    repository.NewUserRepo(db),
		Products: repository.NewProductRepo(db),
		Cart:     repository.NewCartRepo(db),
		Sessions: repository.NewSessionRepo(db),
		logger:   logging.OrNop(logger).Named("shop"),
	}
}

// SignIn checks the password and makes the user the current session.
func (a *App) SignIn(ctx context.Context, username, password string) (repository.User, error) {
	u, err := a.Users.Authenticate(ctx, username, password)
	if err != nil {
		return repository.User{}, err
	}
	if err := a.Sessions.SignIn(ctx, u.ID); err != nil {
		return repository.User{}, fmt.Errorf("start session: %w", err)
	}
	a.logger.Info("signed in", zap.String("user", u.Username))
	return u, nil
}

func (a *App) SignOut(ctx context.Context) error {
	return a.Sessions.SignOut(ctx)
}

// CurrentUser returns the signed-in user or ErrNotSignedIn.
func (a *App) CurrentUser(ctx context.Context) (repository.User, error) {
	id, err := a.Sessions.CurrentUserID(ctx)
	if err != nil {
		return repository.User{}, err
	}
	if id == "" {
		return repository.User{}, ErrNotSignedIn
	}
	u, err := a.Users.Get(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return repository.User{}, ErrNotSignedIn
	}
	return u, err
}

// FillCart replaces the user's cart with n lines, cycling through the catalog.
func (a *App) FillCart(ctx context.Context, userID string, n int) error {
	if err := a.Cart.Clear(ctx, userID); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}
	products, err := a.Products.List(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("fill cart: catalog is empty")
	}
	for i := 0; i < n; i++ {
		if _, err := a.Cart.Add(ctx, userID, products[i%len(products)].ID, 1); err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates or refreshes one account per test user. Accounts whose
// stored hash already matches are left alone.
func SeedUsers(ctx context.Context, users *repository.UserRepo, store *credentials.Store) error {
	for _, key := range store.Keys() {
		c, err := store.Lookup(key)
		if err != nil {
			return err
		}
		if _, err := users.Authenticate(ctx, c.Username, c.Password); err == nil {
			continue
		}
		hash, err := repository.HashPassword(c.Password)
		if err != nil {
			return fmt.Errorf("hash password for %q: %w", key, err)
		}
		u := repository.User{
			ID:           database.UserID(c.Username),
			Username:     c.Username,
			PasswordHash: hash,
			DisplayName:  displayName(key),
		}
		if err := users.Upsert(ctx, u); err != nil {
			return fmt.Errorf("seed user %q: %w", key, err)
		}
	}
	return nil
}

func displayName(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}

func padRight(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if n := ansi.StringWidth(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}
