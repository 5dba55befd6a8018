package preview

import (
	"context"
	"errors"
	"sync"

	"github.com/jask/previewkit/core/pagestate"
)

// ErrNotInitialized is returned by Nav before SetNavigationRoot.
var ErrNotInitialized = errors.New("preview: navigation root not initialized")

// Navigator is the slice of the host framework preview code drives.
type Navigator interface {
	Navigate(ctx context.Context, route string, args any) error
	Current() pagestate.Container
}

var (
	navMu       sync.RWMutex
	navProvider func() Navigator
)

// SetNavigationRoot installs the process-wide navigator provider. Calling it
// again replaces the provider; nil is ignored.
func SetNavigationRoot(provider func() Navigator) {
	if provider == nil {
		return
	}
	navMu.Lock()
	navProvider = provider
	navMu.Unlock()
}

// ResetNavigationRoot clears the provider.
func ResetNavigationRoot() {
	navMu.Lock()
	navProvider = nil
	navMu.Unlock()
}

// Nav returns the root navigator.
func Nav() (Navigator, error) {
	navMu.RLock()
	provider := navProvider
	navMu.RUnlock()
	if provider == nil {
		return nil, ErrNotInitialized
	}
	nav := provider()
	if nav == nil {
		return nil, ErrNotInitialized
	}
	return nav, nil
}
