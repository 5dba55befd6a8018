// Package scenario loads named preview scenarios from a TOML file and binds
// them to the shop's preview configs.
package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jask/previewkit/core/preview"
	"github.com/jask/previewkit/internal/credentials"
	"github.com/jask/previewkit/internal/shop"
	"github.com/jask/previewkit/internal/suggest"
)

// Entry is one [[scenario]] table.
type Entry struct {
	Name         string `toml:"name"`
	Page         string `toml:"page"`
	User         string `toml:"user"`
	Items        int    `toml:"items"`
	Select       int    `toml:"select"`
	FillPassword bool   `toml:"fill_password"`
}

type file struct {
	Scenarios []Entry `toml:"scenario"`
}

// Defaults are used when no scenario file exists.
var Defaults = []Entry{
	{Name: "login", Page: shop.RouteLogin},
	{Name: "admin-cart-3", Page: shop.RouteCart, User: "admin", Items: 3},
	{Name: "guest-home", Page: shop.RouteHome, User: "guest", Items: 1},
}

// Parse decodes a scenario document. Unknown keys are errors.
func Parse(data string) ([]Entry, error) {
	var f file
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("parse scenarios: unknown keys: %s", strings.Join(keys, ", "))
	}
	return f.Scenarios, nil
}

// Load reads path. A missing file yields Defaults.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

var pages = []string{shop.RouteCart, shop.RouteHome, shop.RouteLogin}

// Build binds each entry to the shop preview config for its page.
func Build(entries []Entry, app *shop.App, creds *credentials.Store) (*preview.Catalog, error) {
	cat, _ := preview.NewCatalog()
	for _, e := range entries {
		s, err := bind(e, app, creds)
		if err != nil {
			return nil, err
		}
		if err := cat.Add(s); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func bind(e Entry, app *shop.App, creds *credentials.Store) (preview.Scenario, error) {
	if e.Items < 0 {
		return nil, fmt.Errorf("scenario %q: items must not be negative", e.Name)
	}
	switch strings.ToLower(strings.TrimSpace(e.Page)) {
	case shop.RouteLogin:
		return preview.Bind[*shop.LoginPage, shop.LoginParams](e.Name,
			shop.LoginPreview{App: app, Creds: creds},
			shop.LoginParams{User: e.User, Password: e.FillPassword}), nil
	case shop.RouteHome:
		return preview.Bind[*shop.HomePage, shop.HomeParams](e.Name,
			shop.HomePreview{App: app, Creds: creds},
			shop.HomeParams{User: e.User, Items: e.Items, Select: e.Select}), nil
	case shop.RouteCart:
		return preview.Bind[*shop.CartPage, shop.CartParams](e.Name,
			shop.CartPreview{App: app, Creds: creds},
			shop.CartParams{User: e.User, Items: e.Items, Select: e.Select}), nil
	}
	msg := fmt.Sprintf("scenario %q: unknown page %q (pages: %s)", e.Name, e.Page, strings.Join(sorted(pages), ", "))
	if sg, ok := suggest.Closest(e.Page, pages); ok {
		msg += fmt.Sprintf("; did you mean %q?", sg)
	}
	return nil, errors.New(msg)
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
