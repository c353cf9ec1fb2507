package orderopts

import (
	"fmt"

	"github.com/goliatone/go-order-options/rules"
)

// Catalog is an ordered, validated set of option definitions. It is safe for
// concurrent reads once built.
type Catalog struct {
	definitions []Definition
	index       map[string]int
	// rules evaluates When conditions for callers that pass no evaluator;
	// nil when no definition has one.
	rules rules.Evaluator
}

// NewCatalog validates definitions and preserves their order.
func NewCatalog(definitions ...Definition) (*Catalog, error) {
	c := &Catalog{
		definitions: make([]Definition, 0, len(definitions)),
		index:       make(map[string]int, len(definitions)),
	}
	for _, def := range definitions {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.index[def.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOptionID, def.ID)
		}
		c.index[def.ID] = len(c.definitions)
		c.definitions = append(c.definitions, def.clone())
		if def.When != "" && c.rules == nil {
			c.rules = rules.NewEngine()
		}
	}
	return c, nil
}

// Lookup returns the definition registered under id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Definition{}, false
	}
	return c.definitions[i].clone(), true
}

// Kind returns the kind of option id, or KindUnknown when it is not listed.
func (c *Catalog) Kind(id string) Kind {
	if c == nil {
		return KindUnknown
	}
	i, ok := c.index[id]
	if !ok {
		return KindUnknown
	}
	return c.definitions[i].Kind
}

// Definitions returns copies of every definition in catalog order.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, len(c.definitions))
	for i := range c.definitions {
		out[i] = c.definitions[i].clone()
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.definitions)
}

// Defaults returns the raw default values keyed by option id, skipping
// options without a default.
func (c *Catalog) Defaults() map[string]any {
	out := map[string]any{}
	if c == nil {
		return out
	}
	for _, def := range c.definitions {
		if value, ok := def.DefaultValue(); ok {
			out[def.ID] = value.Raw()
		}
	}
	return out
}
