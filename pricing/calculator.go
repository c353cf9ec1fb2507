package pricing

import (
	"fmt"

	orderopts "github.com/goliatone/go-order-options"
	"github.com/goliatone/go-order-options/layering"
	"github.com/goliatone/go-order-options/rules"
)

// Line is the contribution of one option to the order total.
type Line struct {
	OptionID string         `json:"option_id"`
	Kind     orderopts.Kind `json:"kind"`
	Price    Price          `json:"price"`
}

// Breakdown is the priced result for one selection.
type Breakdown struct {
	Base       float64 `json:"base"`
	Options    float64 `json:"options"`
	Multiplier float64 `json:"multiplier"`
	Lines      []Line  `json:"lines"`
	Total      float64 `json:"total"`
}

// Calculator prices selections against a catalog. Options whose When rule
// does not hold are skipped. With Defaults set, untouched options are priced
// using their catalog default.
type Calculator struct {
	Catalog   *orderopts.Catalog
	Evaluator rules.Evaluator
	Defaults  bool
	Context   rules.Context
}

// Total prices sel on top of base (for example the trip cost "$1,200").
func (c Calculator) Total(base any, sel orderopts.Selection) (Breakdown, error) {
	if c.Catalog == nil {
		return Breakdown{}, fmt.Errorf("pricing: catalog is required")
	}
	basePrice, err := ParsePrice(base)
	if err != nil {
		return Breakdown{}, err
	}
	if basePrice.Kind != Fixed {
		return Breakdown{}, fmt.Errorf("%w: base price must be an amount, got %v", ErrInvalidPrice, base)
	}

	if c.Defaults {
		effective := layering.Effective(sel.Map(), c.Catalog.Defaults())
		sel, err = orderopts.DecodeSelection(c.Catalog, effective)
		if err != nil {
			return Breakdown{}, fmt.Errorf("pricing: effective selection: %w", err)
		}
	}

	applicable, err := c.Catalog.Applicable(sel, c.Evaluator, c.Context)
	if err != nil {
		return Breakdown{}, err
	}

	breakdown := Breakdown{Base: basePrice.Amount, Multiplier: 1, Lines: []Line{}}
	for _, def := range applicable {
		value, ok := sel.Get(def.ID)
		if !ok {
			continue
		}
		price, err := OptionCost(def, value)
		if err != nil {
			return Breakdown{}, err
		}
		if price.IsZero() {
			continue
		}
		breakdown.Lines = append(breakdown.Lines, Line{OptionID: def.ID, Kind: def.Kind, Price: price})
		if price.Kind == Multiplier {
			breakdown.Multiplier += price.Amount
			continue
		}
		breakdown.Options += price.Amount
	}
	breakdown.Total = (breakdown.Base + breakdown.Options) * breakdown.Multiplier
	return breakdown, nil
}

// OptionCost prices one stored value. Dropdown and icons use the chosen
// choice price, checkboxes add up the checked choices, number multiplies the
// option price by the quantity, text and date charge the option price when a
// value is present. Choice ids missing from the definition cost nothing.
func OptionCost(def orderopts.Definition, value orderopts.Value) (Price, error) {
	switch def.Kind {
	case orderopts.KindDropdown, orderopts.KindIcons:
		choice, ok := def.Choice(value.Text())
		if !ok {
			return Price{}, nil
		}
		return Price{Kind: Fixed, Amount: choice.Price}, nil
	case orderopts.KindCheckboxes:
		total := 0.0
		for _, id := range value.List() {
			if choice, ok := def.Choice(id); ok {
				total += choice.Price
			}
		}
		return Price{Kind: Fixed, Amount: total}, nil
	case orderopts.KindNumber:
		unit, err := ParsePrice(def.Price)
		if err != nil {
			return Price{}, fmt.Errorf("pricing: option %q: %w", def.ID, err)
		}
		return unit.Times(value.Number()), nil
	case orderopts.KindText, orderopts.KindDate:
		if value.Text() == "" {
			return Price{}, nil
		}
		price, err := ParsePrice(def.Price)
		if err != nil {
			return Price{}, fmt.Errorf("pricing: option %q: %w", def.ID, err)
		}
		return price, nil
	default:
		return Price{}, fmt.Errorf("pricing: option %q: %w", def.ID, orderopts.ErrUnknownOptionKind)
	}
}
