package host

import (
	"context"

	"github.com/jask/previewkit/core/pagestate"
)

// Navigator drives a Host from outside its event loop.
type Navigator struct {
	host *Host
}

// Navigate asks the host to mount route and waits until the page is pushed.
// The page has not necessarily rendered yet; await it through the registry.
func (n *Navigator) Navigate(ctx context.Context, route string, args any) error {
	return n.navigate(ctx, NavigateMsg{Route: route, Args: args})
}

// Replace swaps the top page for route.
func (n *Navigator) Replace(ctx context.Context, route string, args any) error {
	return n.navigate(ctx, NavigateMsg{Route: route, Args: args, Replace: true})
}

func (n *Navigator) navigate(ctx context.Context, msg NavigateMsg) error {
	done := make(chan error, 1)
	msg.Done = done
	if err := n.host.send(msg); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Navigator) Pop() error {
	return n.host.send(PopMsg{})
}

// Current returns the top-level container, or nil when nothing is mounted.
func (n *Navigator) Current() pagestate.Container {
	if m := n.host.Top(); m != nil {
		return m
	}
	return nil
}
