package orderopts

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Selection is an immutable snapshot of the options chosen for one order.
// Options never touched are absent. Every accepted change produces a new
// snapshot; rejected or redundant changes hand back the same one, which
// callers can detect with Same. The zero Selection is not a snapshot; start
// from NewSelection.
type Selection struct {
	snap *snapshot
}

type snapshot struct {
	entries map[string]Value
}

// NewSelection returns the empty snapshot created when an order form mounts.
func NewSelection() Selection {
	return Selection{snap: &snapshot{entries: map[string]Value{}}}
}

// Get returns the stored value for id.
func (s Selection) Get(id string) (Value, bool) {
	if s.snap == nil {
		return Value{}, false
	}
	value, ok := s.snap.entries[id]
	return value, ok
}

// Has reports whether id has a stored value.
func (s Selection) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the number of options with a stored value.
func (s Selection) Len() int {
	if s.snap == nil {
		return 0
	}
	return len(s.snap.entries)
}

// IDs returns the stored option ids sorted alphabetically.
func (s Selection) IDs() []string {
	if s.snap == nil {
		return nil
	}
	ids := make([]string, 0, len(s.snap.entries))
	for id := range s.snap.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Map returns the raw values keyed by option id, the shape stored under the
// application's selectedOptions key. The map is a detached copy.
func (s Selection) Map() map[string]any {
	out := make(map[string]any, s.Len())
	if s.snap == nil {
		return out
	}
	for id, value := range s.snap.entries {
		out[id] = value.Raw()
	}
	return out
}

// Valid reports whether s is a snapshot (built by NewSelection, ApplyChange
// or DecodeSelection) rather than the zero Selection.
func (s Selection) Valid() bool {
	return s.snap != nil
}

// Same reports whether s and other share the same snapshot, meaning no change
// was applied between them. Zero selections are never the same as anything.
func (s Selection) Same(other Selection) bool {
	return s.snap != nil && s.snap == other.snap
}

// Equal compares two snapshots by value.
func (s Selection) Equal(other Selection) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.snap == nil || other.snap == nil {
		return true
	}
	for id, value := range s.snap.entries {
		otherValue, ok := other.snap.entries[id]
		if !ok || !value.Equal(otherValue) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the raw value map.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s Selection) with(id string, value Value) Selection {
	next := s.clone()
	next.snap.entries[id] = value
	return next
}

func (s Selection) without(id string) Selection {
	next := s.clone()
	delete(next.snap.entries, id)
	return next
}

func (s Selection) clone() Selection {
	entries := make(map[string]Value, s.Len()+1)
	if s.snap != nil {
		for id, value := range s.snap.entries {
			entries[id] = value
		}
	}
	return Selection{snap: &snapshot{entries: entries}}
}

// DecodeSelection rebuilds a snapshot from raw values (as produced by Map or
// read back from a store), applying the same normalisation as the reducer.
// Ids missing from catalog fail, as do values that do not fit their kind.
func DecodeSelection(catalog *Catalog, raw map[string]any) (Selection, error) {
	if catalog == nil {
		return Selection{}, fmt.Errorf("orderopts: catalog is required")
	}
	entries := make(map[string]Value, len(raw))
	for id, input := range raw {
		def, ok := catalog.Lookup(id)
		if !ok {
			return Selection{}, fmt.Errorf("orderopts: option %q not in catalog", id)
		}
		value, present, err := decodeValue(def.Kind, input)
		if err != nil {
			return Selection{}, wrapChangeError(id, def.Kind, err)
		}
		if present {
			entries[id] = value
		}
	}
	return Selection{snap: &snapshot{entries: entries}}, nil
}

func decodeValue(kind Kind, input any) (Value, bool, error) {
	if kind != KindCheckboxes {
		return Extract(kind, Select(input), Value{})
	}
	var ids []string
	switch typed := input.(type) {
	case nil:
	case []string:
		ids = typed
	case []any:
		ids = make([]string, 0, len(typed))
		for _, item := range typed {
			id, ok := item.(string)
			if !ok {
				return Value{}, false, fmt.Errorf("%w: checkbox id %v is %T", ErrInvalidEvent, item, item)
			}
			ids = append(ids, id)
		}
	default:
		return Value{}, false, fmt.Errorf("%w: checkbox value is %T", ErrInvalidEvent, input)
	}
	if len(ids) == 0 {
		return Value{}, false, nil
	}
	return ListValue(ids...), true, nil
}
