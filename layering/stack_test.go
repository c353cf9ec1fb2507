package layering

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewStackOrdersAndValidates(t *testing.T) {
	selection := NewLayer(Scope{Name: "selection", Priority: ScopePrioritySelection}, map[string]any{"transport": "plane"}, "")
	preset := NewLayer(Scope{Name: "preset", Priority: ScopePriorityPreset}, map[string]any{"transport": "bus"}, "")
	defaults := NewLayer(Scope{Name: "defaults", Priority: ScopePriorityDefaults}, nil, "")

	stack, err := NewStack(defaults, selection, preset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layers := stack.Layers()
	for i, want := range []string{"selection", "preset", "defaults"} {
		if layers[i].Scope.Name != want {
			t.Fatalf("expected layer %d to be %q, got %q", i, want, layers[i].Scope.Name)
		}
	}

	if _, err := NewStack(selection, NewLayer(Scope{Name: "selection", Priority: 1}, nil, "")); !errors.Is(err, ErrDuplicateScopeName) {
		t.Fatalf("expected duplicate scope name error, got %v", err)
	}
	if _, err := NewStack(
		NewLayer(Scope{Name: "alpha", Priority: 100}, nil, ""),
		NewLayer(Scope{Name: "beta", Priority: 100}, nil, ""),
	); !errors.Is(err, ErrPriorityOrder) {
		t.Fatalf("expected priority order error, got %v", err)
	}
	if _, err := NewStack(NewLayer(Scope{Priority: 1}, nil, "")); !errors.Is(err, ErrScopeNameRequired) {
		t.Fatalf("expected missing name error, got %v", err)
	}
}

func TestStackMergeAndSources(t *testing.T) {
	stack, err := NewStack(
		NewLayer(Scope{Name: "defaults", Priority: ScopePriorityDefaults}, map[string]any{"travellers": 1.0, "transport": "bus"}, ""),
		NewLayer(Scope{Name: "preset", Priority: ScopePriorityPreset}, map[string]any{"extras": []string{"guide"}}, ""),
		NewLayer(Scope{Name: "selection", Priority: ScopePrioritySelection}, map[string]any{"transport": "plane"}, "snap-1"),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	want := map[string]any{"travellers": 1.0, "transport": "plane", "extras": []string{"guide"}}
	if got := stack.Merge(); !reflect.DeepEqual(got, want) {
		t.Fatalf("merged mismatch:\nwant: %#v\n got: %#v", want, got)
	}
	wantSources := map[string]string{"travellers": "defaults", "transport": "selection", "extras": "preset"}
	if got := stack.Sources(); !reflect.DeepEqual(got, wantSources) {
		t.Fatalf("sources mismatch:\nwant: %v\n got: %v", wantSources, got)
	}
}

func TestStackTraceReportsEveryLayer(t *testing.T) {
	stack := SelectionOverDefaults(
		map[string]any{"transport": "plane"},
		map[string]any{"transport": "bus", "travellers": 1.0},
		"snap-7",
	)

	trace := stack.Trace("transport")
	if trace.Winner != "selection" || len(trace.Layers) != 2 {
		t.Fatalf("unexpected trace %+v", trace)
	}
	if !trace.Layers[0].Found || trace.Layers[0].SnapshotID != "snap-7" || trace.Layers[0].Value != "plane" {
		t.Fatalf("expected selection layer first, got %+v", trace.Layers[0])
	}
	if !trace.Layers[1].Found || trace.Layers[1].Value != "bus" {
		t.Fatalf("expected defaults layer to keep its fallback, got %+v", trace.Layers[1])
	}

	if missing := stack.Trace("insurance"); missing.Winner != "" || missing.Layers[0].Found || missing.Layers[1].Found {
		t.Fatalf("expected untraced option to have no winner, got %+v", missing)
	}

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if decoded.Winner != "selection" || decoded.Layers[1].Scope.Name != "defaults" {
		t.Fatalf("unexpected decoded trace %+v", decoded)
	}
}

func TestStackLayersAreImmutable(t *testing.T) {
	values := map[string]any{"extras": []string{"guide"}}
	stack, err := NewStack(NewLayer(Scope{Name: "selection", Priority: 1}, values, ""))
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	values["extras"].([]string)[0] = "mutated"

	layers := stack.Layers()
	layers[0].Values["extras"] = "replaced"

	next := stack.Layers()
	if !reflect.DeepEqual(next[0].Values["extras"], []string{"guide"}) {
		t.Fatalf("expected stack values to stay detached, got %v", next[0].Values["extras"])
	}
}

func TestStackLenAndEmpty(t *testing.T) {
	stack, err := NewStack()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stack.Len() != 0 || len(stack.Merge()) != 0 || len(stack.Layers()) != 0 {
		t.Fatalf("expected empty stack")
	}
	var nilStack *Stack
	if nilStack.Len() != 0 || nilStack.Trace("x").Winner != "" || len(nilStack.Sources()) != 0 {
		t.Fatalf("expected nil stack to behave as empty")
	}
}
