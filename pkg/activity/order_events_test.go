package activity

import (
	"context"
	"testing"
	"time"
)

func TestBuildOptionSelectedEventIncludesOrderMetadata(t *testing.T) {
	meta := map[string]any{"source": "web"}
	input := OrderEventInput{
		ActorID:        " actor ",
		UserID:         " user ",
		TripID:         " trip-7 ",
		OrderID:        " order-1 ",
		OptionID:       "transport",
		Kind:           "dropdown",
		OldValue:       "bus",
		NewValue:       "plane",
		SnapshotID:     "snap-2",
		Metadata:       meta,
		DefinitionCode: "orders:option",
		Recipients:     []string{"agent@example.com"},
		Channel:        " bookings ",
	}

	event := BuildOptionSelectedEvent(input)

	if event.Verb != VerbOptionSelected {
		t.Fatalf("expected verb %s got %s", VerbOptionSelected, event.Verb)
	}
	if event.ObjectType != ObjectTypeOrder || event.ObjectID != "order-1" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" || event.UserID != "user" || event.Channel != "bookings" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Metadata["trip_id"] != "trip-7" || event.Metadata["option_id"] != "transport" {
		t.Fatalf("expected order metadata, got %+v", event.Metadata)
	}
	if event.Metadata["option_kind"] != "dropdown" || event.Metadata["snapshot_id"] != "snap-2" {
		t.Fatalf("expected option kind and snapshot, got %+v", event.Metadata)
	}
	if event.Metadata["old_value"] != "bus" || event.Metadata["new_value"] != "plane" {
		t.Fatalf("expected old/new values, got %v %v", event.Metadata["old_value"], event.Metadata["new_value"])
	}
	if event.Metadata["source"] != "web" {
		t.Fatalf("expected caller metadata kept, got %+v", event.Metadata)
	}
	event.Metadata["source"] = "changed"
	if meta["source"] != "web" {
		t.Fatalf("expected caller metadata untouched")
	}
	if len(event.Recipients) != 1 || event.Recipients[0] != "agent@example.com" {
		t.Fatalf("expected recipients preserved, got %v", event.Recipients)
	}
}

func TestOrderEventVerbs(t *testing.T) {
	input := OrderEventInput{OrderID: "o1"}
	cases := map[string]Event{
		VerbOptionSelected: BuildOptionSelectedEvent(input),
		VerbOptionCleared:  BuildOptionClearedEvent(input),
		VerbOptionRejected: BuildOptionRejectedEvent(input),
		VerbOrderSubmitted: BuildOrderSubmittedEvent(input),
	}
	for verb, event := range cases {
		if event.Verb != verb {
			t.Fatalf("expected %s, got %s", verb, event.Verb)
		}
		if event.Metadata != nil {
			t.Fatalf("expected no metadata for bare input, got %+v", event.Metadata)
		}
	}
}

func TestBuildOptionRejectedEventCarriesReason(t *testing.T) {
	event := BuildOptionRejectedEvent(OrderEventInput{
		OrderID:  "o1",
		OptionID: "travellers",
		NewValue: "abc",
		Reason:   "orderopts: invalid numeric input",
	})
	if event.Metadata["reason"] != "orderopts: invalid numeric input" {
		t.Fatalf("expected reason, got %+v", event.Metadata)
	}
}

func TestOrderEventWithoutOrderIsDropped(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	event := BuildOrderSubmittedEvent(OrderEventInput{OccurredAt: time.Now()})
	if err := emitter.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected event without order id to be dropped, got %d", len(capture.Events))
	}
}
