package preview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jask/previewkit/internal/suggest"
)

// Catalog holds scenarios by name.
type Catalog struct {
	byName map[string]Scenario
}

func NewCatalog(scenarios ...Scenario) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Scenario, len(scenarios))}
	for _, s := range scenarios {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Add(s Scenario) error {
	name := strings.TrimSpace(s.Name())
	if name == "" {
		return fmt.Errorf("preview: scenario name required")
	}
	if _, exists := c.byName[name]; exists {
		return fmt.Errorf("preview: scenario %q already registered", name)
	}
	c.byName[name] = s
	return nil
}

func (c *Catalog) Get(name string) (Scenario, error) {
	if s, ok := c.byName[strings.TrimSpace(name)]; ok {
		return s, nil
	}
	known := c.Names()
	err := &UnknownScenarioError{Name: name, Known: known}
	if s, ok := suggest.Closest(name, known); ok {
		err.Suggestion = s
	}
	return nil, err
}

func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.byName))
	for name := range c.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type UnknownScenarioError struct {
	Name       string
	Known      []string
	Suggestion string
}

func (e *UnknownScenarioError) Error() string {
	msg := fmt.Sprintf("preview: unknown scenario %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}
