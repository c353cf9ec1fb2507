package layering

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

const (
	// Recommended priorities for order layers. Higher numbers win.
	ScopePriorityDefaults  = 100
	ScopePriorityPreset    = 200
	ScopePrioritySelection = 300
)

var (
	// ErrScopeNameRequired indicates a layer without a scope name.
	ErrScopeNameRequired = errors.New("layering: scope name must be provided")
	// ErrDuplicateScopeName indicates two layers sharing a scope name.
	ErrDuplicateScopeName = errors.New("layering: scope names must be unique")
	// ErrPriorityOrder indicates layers with equal priorities.
	ErrPriorityOrder = errors.New("layering: priorities must be strictly ordered")
)

// Scope names a precedence bucket such as the customer selection, a trip
// preset or the catalog defaults.
type Scope struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Priority int    `json:"priority"`
}

// Layer pairs a scope with the raw option values it contributes.
type Layer struct {
	Scope      Scope
	Values     map[string]any
	SnapshotID string
}

// NewLayer copies values so later mutation by the caller has no effect.
func NewLayer(scope Scope, values map[string]any, snapshotID string) Layer {
	return Layer{Scope: scope, Values: cloneMap(values), SnapshotID: snapshotID}
}

// Stack is an immutable set of layers ordered from strongest to weakest.
type Stack struct {
	layers []Layer
}

// NewStack validates layers and sorts them by descending priority.
func NewStack(layers ...Layer) (*Stack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied[i] = NewLayer(layer.Scope, layer.Values, layer.SnapshotID)
	}
	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority == copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}
	return &Stack{layers: copied}, nil
}

// SelectionOverDefaults builds the usual two-layer stack of an order.
func SelectionOverDefaults(selection, defaults map[string]any, snapshotID string) *Stack {
	// Distinct names and priorities, so construction cannot fail.
	stack, _ := NewStack(
		NewLayer(Scope{Name: "selection", Label: "Customer selection", Priority: ScopePrioritySelection}, selection, snapshotID),
		NewLayer(Scope{Name: "defaults", Label: "Catalog defaults", Priority: ScopePriorityDefaults}, defaults, ""),
	)
	return stack
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Layers returns copies of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i, layer := range s.layers {
		out[i] = NewLayer(layer.Scope, layer.Values, layer.SnapshotID)
	}
	return out
}

// Merge resolves the stack into one map.
func (s *Stack) Merge() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	values := make([]map[string]any, len(s.layers))
	for i, layer := range s.layers {
		values[i] = layer.Values
	}
	return Merge(values...)
}

// Trace reports, for one option id, what every layer holds. Winner names the
// scope whose value is effective, or is empty when no layer sets the option.
func (s *Stack) Trace(optionID string) Trace {
	trace := Trace{OptionID: optionID, Layers: []Provenance{}}
	if s == nil {
		return trace
	}
	for _, layer := range s.layers {
		value, found := layer.Values[optionID]
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      layer.Scope,
			SnapshotID: layer.SnapshotID,
			Value:      Clone(value),
			Found:      found,
		})
		if found && trace.Winner == "" {
			trace.Winner = layer.Scope.Name
		}
	}
	return trace
}

// Sources maps every option set in some layer to the scope that wins it.
func (s *Stack) Sources() map[string]string {
	out := map[string]string{}
	if s == nil {
		return out
	}
	for i := len(s.layers) - 1; i >= 0; i-- {
		for id := range s.layers[i].Values {
			out[id] = s.layers[i].Scope.Name
		}
	}
	return out
}

// Trace is the provenance of one option across a stack.
type Trace struct {
	OptionID string       `json:"option_id"`
	Winner   string       `json:"winner,omitempty"`
	Layers   []Provenance `json:"layers"`
}

// Provenance is what a single layer holds for a traced option.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// ToJSON serialises the trace for logs.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

func cloneMap(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return Clone(values).(map[string]any)
}
