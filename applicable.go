package orderopts

import (
	"fmt"

	"github.com/goliatone/go-order-options/rules"
)

// Applicable returns the definitions that apply to the order given its
// current selection: those without a When rule and those whose rule holds.
// A nil evaluator falls back to the catalog's own expr engine, built once
// with NewCatalog, so compiled rules are reused across calls.
func (c *Catalog) Applicable(sel Selection, evaluator rules.Evaluator, ctx rules.Context) ([]Definition, error) {
	if c == nil {
		return nil, nil
	}
	ctx.Selection = sel.Map()
	if evaluator == nil {
		evaluator = c.rules
	}
	out := make([]Definition, 0, len(c.definitions))
	for _, def := range c.definitions {
		if def.When == "" {
			out = append(out, def.clone())
			continue
		}
		ok, err := rules.Condition(evaluator, ctx, def.When)
		if err != nil {
			return nil, fmt.Errorf("orderopts: option %q when: %w", def.ID, err)
		}
		if ok {
			out = append(out, def.clone())
		}
	}
	return out, nil
}
