package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-order-options/pkg/state"
)

func TestMemoryStoreSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore[map[string]any]()
	ref := state.Ref{TripID: "rome", OrderID: "o-1"}

	if _, _, ok, err := store.Load(ctx, ref); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%t err=%v", ok, err)
	}

	extra := map[string]string{"source": "web"}
	saved, err := store.Save(ctx, ref, map[string]any{"transport": "bus"}, state.Meta{SnapshotID: "s1", ETag: "e1", Extra: extra})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	extra["source"] = "changed"
	if saved.Extra["source"] != "web" {
		t.Fatalf("expected saved meta to be detached from caller, got %v", saved.Extra)
	}

	snapshot, meta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("expected record, got ok=%t err=%v", ok, err)
	}
	if snapshot["transport"] != "bus" || meta.ETag != "e1" || meta.Extra["source"] != "web" {
		t.Fatalf("unexpected record %v %+v", snapshot, meta)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one record, got %d", store.Len())
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("delete of missing record should succeed, got %v", err)
	}
	if _, _, ok, _ := store.Load(ctx, ref); ok {
		t.Fatalf("expected record to be gone")
	}
}

func TestMemoryStoreRejectsIncompleteRef(t *testing.T) {
	store := state.NewMemoryStore[int]()
	if _, err := store.Save(context.Background(), state.Ref{TripID: "rome"}, 1, state.Meta{}); err == nil {
		t.Fatalf("expected error for ref without order id")
	}
}

func TestMemoryStoreSaveIfMatch(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore[string]()
	ref := state.Ref{TripID: "rome", OrderID: "o-2"}

	if _, err := store.SaveIfMatch(ctx, ref, "first", state.Meta{ETag: "e1"}, "e0"); !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected mismatch for missing record, got %v", err)
	}
	if _, err := store.SaveIfMatch(ctx, ref, "first", state.Meta{ETag: "e1"}, ""); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.SaveIfMatch(ctx, ref, "again", state.Meta{ETag: "e9"}, ""); !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected second insert to conflict, got %v", err)
	}
	current, err := store.SaveIfMatch(ctx, ref, "stale", state.Meta{ETag: "e3"}, "e0")
	if !errors.Is(err, state.ErrETagMismatch) || current.ETag != "e1" {
		t.Fatalf("expected mismatch reporting e1, got %+v %v", current, err)
	}
	if _, err := store.SaveIfMatch(ctx, ref, "second", state.Meta{ETag: "e2"}, "e1"); err != nil {
		t.Fatalf("conditional save: %v", err)
	}
	snapshot, meta, _, _ := store.Load(ctx, ref)
	if snapshot != "second" || meta.ETag != "e2" {
		t.Fatalf("unexpected record %q %+v", snapshot, meta)
	}
}
