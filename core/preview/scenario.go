package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jask/previewkit/core/pagestate"
)

// ErrUnresolvedAwait means the target page never rendered within the await
// timeout.
var ErrUnresolvedAwait = errors.New("preview: page did not render in time")

// Env is what a scenario runs against.
type Env struct {
	Nav          Navigator
	Registry     *pagestate.Registry
	AwaitTimeout time.Duration
}

// Config prepares application state for page type T from params P and
// navigates to the page. One config type is bound to one param type.
type Config[T any, P any] interface {
	Setup(ctx context.Context, params P) error
	Navigate(ctx context.Context, nav Navigator, params P) error
}

// Inspector is an optional Config extension that receives the freshly
// rendered page.
type Inspector[T any, P any] interface {
	AfterRender(ctx context.Context, page T, params P) error
}

// Scenario is a config bound to concrete params.
type Scenario interface {
	Name() string
	Key() pagestate.Key
	Execute(ctx context.Context, env Env) error
}

type binding[T any, P any] struct {
	name   string
	cfg    Config[T, P]
	params P
}

// Bind pairs cfg with params under name.
func Bind[T any, P any](name string, cfg Config[T, P], params P) Scenario {
	return &binding[T, P]{name: name, cfg: cfg, params: params}
}

func (b *binding[T, P]) Name() string       { return b.name }
func (b *binding[T, P]) Key() pagestate.Key { return pagestate.KeyFor[T]() }

// Execute runs setup and navigation, then waits for the page to render.
// Errors from the config are returned unwrapped.
func (b *binding[T, P]) Execute(ctx context.Context, env Env) error {
	if env.Nav == nil {
		return ErrNotInitialized
	}
	if err := b.cfg.Setup(ctx, b.params); err != nil {
		return err
	}
	if err := b.cfg.Navigate(ctx, env.Nav, b.params); err != nil {
		return err
	}
	page, err := awaitState[T](ctx, env)
	if err != nil {
		return err
	}
	if in, ok := b.cfg.(Inspector[T, P]); ok {
		return in.AfterRender(ctx, page, b.params)
	}
	return nil
}

func awaitState[T any](ctx context.Context, env Env) (T, error) {
	reg := env.Registry
	if reg == nil {
		var err error
		if reg, err = pagestate.Default(); err != nil {
			var zero T
			return zero, err
		}
	}
	timeout := env.AwaitTimeout
	if timeout <= 0 {
		timeout = DefaultAwaitTimeout
	}
	key := pagestate.KeyFor[T]()
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	page, err := pagestate.State[T](actx, reg, key)
	if errors.Is(err, context.DeadlineExceeded) {
		return page, fmt.Errorf("%w: %s after %s", ErrUnresolvedAwait, key, timeout)
	}
	return page, err
}

// GetContext waits on the process-wide registry for page type T and returns
// its render container.
func GetContext[T any](ctx context.Context) (pagestate.Container, error) {
	reg, err := pagestate.Default()
	if err != nil {
		return nil, err
	}
	return reg.Context(ctx, pagestate.KeyFor[T]())
}

// GetState waits on the process-wide registry for the live instance of T.
func GetState[T any](ctx context.Context) (T, error) {
	reg, err := pagestate.Default()
	if err != nil {
		var zero T
		return zero, err
	}
	return pagestate.State[T](ctx, reg, pagestate.KeyFor[T]())
}
