package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	recipients := []string{" a ", "b "}
	evt := Event{
		Verb:           " order.option.selected ",
		ActorID:        " actor ",
		UserID:         " user ",
		TenantID:       " tenant ",
		ObjectType:     " order ",
		ObjectID:       " 42 ",
		Channel:        " orders ",
		DefinitionCode: " def ",
		Recipients:     recipients,
		Metadata:       meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "order.option.selected" || got.ObjectType != "order" || got.ObjectID != "42" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "orders" || got.DefinitionCode != "def" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	if got.Metadata["k"] != "v" {
		t.Fatalf("expected metadata value preserved: %+v", got.Metadata)
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
	got.Recipients[0] = "changed"
	if recipients[0] != " a " {
		t.Fatalf("expected original recipients untouched: %+v", recipients)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	hooks := Hooks{&CaptureHook{}}
	err := hooks.Notify(context.Background(), Event{Verb: VerbOptionSelected, ObjectType: ObjectTypeOrder})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	capture := hooks[0].(*CaptureHook)
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	capture := &CaptureHook{}
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			if ctx != nil {
				ctxSeen = true
			}
			return nil
		}),
		capture,
		HookFunc(func(_ context.Context, _ Event) error { return boom1 }),
		nil,
		HookFunc(func(_ context.Context, _ Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: VerbOptionSelected, ObjectType: ObjectTypeOrder, ObjectID: "1"})
	if err == nil || !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), Event{Verb: VerbOptionCleared, ObjectType: ObjectTypeOrder, ObjectID: "1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: ""})
	if !enabled.Enabled() {
		t.Fatalf("expected emitter to be enabled")
	}
	if err := enabled.Emit(context.Background(), Event{Verb: VerbOptionCleared, ObjectType: ObjectTypeOrder, ObjectID: "1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel applied, got %q", capture.Events[0].Channel)
	}
}

func TestEmitterPreservesExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbOrderSubmitted,
		ObjectType: ObjectTypeOrder,
		ObjectID:   "1",
		Channel:    "custom",
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].Channel != "custom" {
		t.Fatalf("expected explicit channel preserved, got %q", capture.Events[0].Channel)
	}
	if capture.Events[0].OccurredAt != (time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected occurred_at preserved, got %v", capture.Events[0].OccurredAt)
	}
}

func TestEmitterStampsTenantAndDefinition(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{nil, capture}, Config{Enabled: true, TenantID: " agency-1 ", DefinitionCode: "trip-order"})

	if err := emitter.Emit(context.Background(), Event{Verb: VerbOptionSelected, ObjectType: ObjectTypeOrder, ObjectID: "1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := emitter.Emit(context.Background(), Event{Verb: VerbOptionSelected, ObjectType: ObjectTypeOrder, ObjectID: "2", TenantID: "other"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].TenantID != "agency-1" || capture.Events[0].DefinitionCode != "trip-order" {
		t.Fatalf("expected defaults stamped, got %+v", capture.Events[0])
	}
	if capture.Events[1].TenantID != "other" {
		t.Fatalf("expected explicit tenant preserved, got %q", capture.Events[1].TenantID)
	}

	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter with only nil hooks to be disabled")
	}
}

func TestHooksIsolateMetadataBetweenHooks(t *testing.T) {
	extras := []string{"guide"}
	var first Event
	second := &CaptureHook{}
	hooks := Hooks{
		HookFunc(func(_ context.Context, event Event) error {
			first = event
			event.Metadata[MetaNewValue].([]string)[0] = "mutated"
			return nil
		}),
		second,
	}

	err := hooks.Notify(context.Background(), Event{
		Verb:       VerbOptionSelected,
		ObjectType: ObjectTypeOrder,
		ObjectID:   "1",
		Metadata:   map[string]any{MetaOptionID: "extras", MetaNewValue: extras},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if first.OptionID() != "extras" {
		t.Fatalf("expected option id accessor, got %q", first.OptionID())
	}
	last, _ := second.Last()
	if got := last.Metadata[MetaNewValue].([]string)[0]; got != "guide" {
		t.Fatalf("expected second hook to see the original value, got %q", got)
	}
	if extras[0] != "guide" {
		t.Fatalf("expected caller slice untouched, got %v", extras)
	}
}

func TestOnlyVerbsFiltersEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{OnlyVerbs(capture, VerbOptionRejected, VerbOrderSubmitted)}

	for _, verb := range []string{VerbOptionSelected, VerbOptionRejected, VerbOptionCleared, VerbOrderSubmitted} {
		if err := hooks.Notify(context.Background(), Event{Verb: verb, ObjectType: ObjectTypeOrder, ObjectID: "1"}); err != nil {
			t.Fatalf("notify %s: %v", verb, err)
		}
	}
	if capture.Len() != 2 || capture.Count(VerbOptionRejected) != 1 {
		t.Fatalf("expected rejected and submitted only, got %v", capture.Verbs())
	}

	capture.Reset()
	if _, ok := capture.Last(); ok || capture.Len() != 0 {
		t.Fatalf("expected reset to drop events")
	}
	if err := OnlyVerbs(nil, VerbOptionSelected).Notify(context.Background(), Event{Verb: VerbOptionSelected}); err != nil {
		t.Fatalf("expected nil hook to be ignored, got %v", err)
	}
}
