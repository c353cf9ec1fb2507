package orderopts

import (
	"errors"
	"fmt"
	"slices"
)

var errOptionIDRequired = errors.New("option id is required")

// ApplyChange computes the selection that results from one change event on
// optionID. It never mutates current. Rejected changes (bad numeric or date
// input, malformed events, unknown kinds) return current together with a
// *ChangeError; redundant changes return current with a nil error. Either
// way current.Same(next) reports true when current is a snapshot.
//
// Number values are not clamped to the option Limits. The bounds are hints
// for the renderer; enforcing them here would change stored state and has to
// be a product decision.
func ApplyChange(current Selection, optionID string, kind Kind, ev Event) (Selection, error) {
	if optionID == "" {
		return current, wrapChangeError(optionID, kind, fmt.Errorf("%w: %v", ErrInvalidEvent, errOptionIDRequired))
	}
	prior, had := current.Get(optionID)
	next, present, err := Extract(kind, ev, prior)
	if err != nil {
		return current, wrapChangeError(optionID, kind, err)
	}
	if !present {
		if !had {
			return current, nil
		}
		return current.without(optionID), nil
	}
	if had && prior.Equal(next) {
		return current, nil
	}
	return current.with(optionID, next), nil
}

// Extract applies the per-kind extraction rule to ev. prior is the value
// currently stored for the option (zero when absent). present=false means the
// option key should be removed.
func Extract(kind Kind, ev Event, prior Value) (Value, bool, error) {
	switch kind {
	case KindDropdown, KindIcons:
		id, err := eventString(kind, ev)
		if err != nil {
			return Value{}, false, err
		}
		if id == "" {
			return Value{}, false, nil
		}
		return TextValue(kind, id), true, nil
	case KindCheckboxes:
		return extractCheckbox(ev, prior)
	case KindNumber:
		number, err := CoerceNumber(ev.Value)
		if err != nil {
			return Value{}, false, err
		}
		return NumberValue(number), true, nil
	case KindText:
		text, err := eventString(kind, ev)
		if err != nil {
			return Value{}, false, err
		}
		return TextValue(kind, text), true, nil
	case KindDate:
		date, ok, err := NormalizeDate(ev.Value)
		if err != nil || !ok {
			return Value{}, false, err
		}
		return TextValue(kind, date), true, nil
	default:
		return Value{}, false, ErrUnknownOptionKind
	}
}

func extractCheckbox(ev Event, prior Value) (Value, bool, error) {
	id, err := eventString(KindCheckboxes, ev)
	if err != nil {
		return Value{}, false, err
	}
	if id == "" {
		return Value{}, false, fmt.Errorf("%w: checkbox toggle without choice id", ErrInvalidEvent)
	}
	checked := prior.List()
	if ev.Checked {
		if prior.contains(id) {
			return prior, true, nil
		}
		return ListValue(append(checked, id)...), true, nil
	}
	remaining := slices.DeleteFunc(checked, func(existing string) bool {
		return existing == id
	})
	if len(remaining) == 0 {
		return Value{}, false, nil
	}
	return ListValue(remaining...), true, nil
}

func eventString(kind Kind, ev Event) (string, error) {
	switch typed := ev.Value.(type) {
	case string:
		return typed, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidEvent, kind, ev.Value)
	}
}
