package orderopts

import (
	"encoding/json"
	"slices"
)

type valueShape int

const (
	shapeNone valueShape = iota
	shapeText
	shapeList
	shapeNumber
)

// Value is the stored selection for one option. Its shape follows the option
// kind: text for dropdown, icons, text and date; an ordered id list for
// checkboxes; a float64 for number. The zero Value is empty.
type Value struct {
	kind   Kind
	shape  valueShape
	text   string
	list   []string
	number float64
}

// TextValue builds a single-string value for dropdown, icons, text or date.
func TextValue(kind Kind, text string) Value {
	return Value{kind: kind, shape: shapeText, text: text}
}

// ListValue builds a checkbox value. Duplicate ids are dropped keeping the
// first occurrence.
func ListValue(ids ...string) Value {
	return Value{kind: KindCheckboxes, shape: shapeList, list: dedupe(ids)}
}

// NumberValue builds a number value.
func NumberValue(number float64) Value {
	return Value{kind: KindNumber, shape: shapeNumber, number: number}
}

// Kind returns the option kind the value was produced for.
func (v Value) Kind() Kind {
	return v.kind
}

// IsZero reports whether v carries no selection.
func (v Value) IsZero() bool {
	return v.shape == shapeNone
}

// Text returns the string payload; empty for list and number values.
func (v Value) Text() string {
	return v.text
}

// List returns a copy of the checked ids.
func (v Value) List() []string {
	if v.shape != shapeList {
		return nil
	}
	return append([]string{}, v.list...)
}

// Number returns the numeric payload; zero for other shapes.
func (v Value) Number() float64 {
	return v.number
}

// Raw returns the primitive handed to renderers and stores: string, []string
// or float64. The zero Value yields nil.
func (v Value) Raw() any {
	switch v.shape {
	case shapeText:
		return v.text
	case shapeList:
		return v.List()
	case shapeNumber:
		return v.number
	default:
		return nil
	}
}

// Equal compares kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind || v.shape != other.shape {
		return false
	}
	switch v.shape {
	case shapeText:
		return v.text == other.text
	case shapeList:
		return slices.Equal(v.list, other.list)
	case shapeNumber:
		return v.number == other.number
	default:
		return true
	}
}

// MarshalJSON encodes the raw payload.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

func (v Value) contains(id string) bool {
	return slices.Contains(v.list, id)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
