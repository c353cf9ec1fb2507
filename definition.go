package orderopts

import (
	"errors"
	"fmt"
)

// Choice is one selectable value of a dropdown, icons or checkboxes option.
type Choice struct {
	ID    string  `json:"id"`
	Label string  `json:"label,omitempty"`
	Icon  string  `json:"icon,omitempty"`
	Price float64 `json:"price"`
}

// Limits bounds a number option. The reducer does not enforce them.
type Limits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Definition describes one configurable attribute of an order. Definitions
// come from the catalog and are never mutated by the reducer.
type Definition struct {
	ID       string   `json:"id"`
	Label    string   `json:"label,omitempty"`
	Kind     Kind     `json:"kind"`
	Choices  []Choice `json:"choices,omitempty"`
	Required bool     `json:"required,omitempty"`
	Limits   *Limits  `json:"limits,omitempty"`
	// Price is the option-level price: a fixed amount ("$20", "20"), a
	// multiplier of the order total ("50%"), or a unit price for number
	// options.
	Price string `json:"price,omitempty"`
	// When is an optional rule expression; the option applies to the order
	// only while it evaluates to true.
	When string `json:"when,omitempty"`
	// Default is the pre-filled value used for effective selections. It is
	// never written into the selection by the reducer.
	Default any `json:"default,omitempty"`
}

var (
	// ErrDefinitionIDRequired indicates a catalog entry without an id.
	ErrDefinitionIDRequired = errors.New("orderopts: option id must be provided")
	// ErrDuplicateOptionID indicates a catalog with repeated option ids.
	ErrDuplicateOptionID = errors.New("orderopts: option ids must be unique")
)

// Validate checks the structural rules of a definition.
func (d Definition) Validate() error {
	if d.ID == "" {
		return ErrDefinitionIDRequired
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("option %q: %w", d.ID, ErrUnknownOptionKind)
	}
	if d.Kind.Enumerated() {
		if len(d.Choices) == 0 {
			return fmt.Errorf("orderopts: option %q: %s requires choices", d.ID, d.Kind)
		}
		seen := make(map[string]struct{}, len(d.Choices))
		for i, choice := range d.Choices {
			if choice.ID == "" {
				return fmt.Errorf("orderopts: option %q: choice %d has no id", d.ID, i)
			}
			if _, ok := seen[choice.ID]; ok {
				return fmt.Errorf("orderopts: option %q: duplicate choice %q", d.ID, choice.ID)
			}
			seen[choice.ID] = struct{}{}
		}
	} else if len(d.Choices) > 0 {
		return fmt.Errorf("orderopts: option %q: %s does not take choices", d.ID, d.Kind)
	}
	if d.Limits != nil && d.Limits.Min > d.Limits.Max {
		return fmt.Errorf("orderopts: option %q: limits min %v exceeds max %v", d.ID, d.Limits.Min, d.Limits.Max)
	}
	if d.Default != nil {
		if _, _, err := decodeValue(d.Kind, d.Default); err != nil {
			return fmt.Errorf("orderopts: option %q: default: %w", d.ID, err)
		}
	}
	return nil
}

// Choice returns the choice with the given id.
func (d Definition) Choice(id string) (Choice, bool) {
	for _, choice := range d.Choices {
		if choice.ID == id {
			return choice, true
		}
	}
	return Choice{}, false
}

// DefaultValue returns the normalised default, or ok=false when none is set.
func (d Definition) DefaultValue() (Value, bool) {
	if d.Default == nil {
		return Value{}, false
	}
	value, present, err := decodeValue(d.Kind, d.Default)
	if err != nil || !present {
		return Value{}, false
	}
	return value, true
}

func (d Definition) clone() Definition {
	out := d
	if len(d.Choices) > 0 {
		out.Choices = append([]Choice(nil), d.Choices...)
	}
	if d.Limits != nil {
		limits := *d.Limits
		out.Limits = &limits
	}
	return out
}
