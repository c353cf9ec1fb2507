package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-order-options/pkg/activity"
	"github.com/goliatone/go-order-options/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookRecordsOrderLifecycle(t *testing.T) {
	actorID := uuid.New()
	tenantID := uuid.New()
	now := time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)
	input := activity.OrderEventInput{
		ActorID:    actorID.String(),
		TripID:     "lisbon-weekend",
		OrderID:    "order-17",
		OptionID:   "transport",
		Kind:       "dropdown",
		Recipients: []string{"desk@example.com"},
		OccurredAt: now,
	}

	tests := []struct {
		name  string
		build func(activity.OrderEventInput) activity.Event
		edit  func(*activity.OrderEventInput)
		verb  string
		data  map[string]any
	}{
		{
			name:  "selected",
			build: activity.BuildOptionSelectedEvent,
			edit:  func(in *activity.OrderEventInput) { in.OldValue, in.NewValue = "bus", "plane" },
			verb:  activity.VerbOptionSelected,
			data:  map[string]any{"old_value": "bus", "new_value": "plane", "option_kind": "dropdown"},
		},
		{
			name:  "cleared",
			build: activity.BuildOptionClearedEvent,
			edit:  func(in *activity.OrderEventInput) { in.OldValue = "plane" },
			verb:  activity.VerbOptionCleared,
			data:  map[string]any{"old_value": "plane"},
		},
		{
			name:  "rejected",
			build: activity.BuildOptionRejectedEvent,
			edit: func(in *activity.OrderEventInput) {
				in.OptionID, in.Kind, in.NewValue, in.Reason = "travellers", "number", "many", "invalid numeric input"
			},
			verb: activity.VerbOptionRejected,
			data: map[string]any{"option_id": "travellers", "new_value": "many", "reason": "invalid numeric input"},
		},
		{
			name:  "submitted",
			build: activity.BuildOrderSubmittedEvent,
			edit:  func(in *activity.OrderEventInput) { in.OptionID, in.Kind, in.SnapshotID = "", "", "snap-3" },
			verb:  activity.VerbOrderSubmitted,
			data:  map[string]any{"snapshot_id": "snap-3"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordingSink{}
			emitter := activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: sink}}, activity.Config{
				Enabled:        true,
				TenantID:       tenantID.String(),
				DefinitionCode: "trip-order",
			})
			in := input
			tc.edit(&in)
			if err := emitter.Emit(context.Background(), tc.build(in)); err != nil {
				t.Fatalf("emit: %v", err)
			}
			if len(sink.records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(sink.records))
			}
			record := sink.records[0]
			if record.Verb != tc.verb || record.ObjectType != activity.ObjectTypeOrder || record.ObjectID != "order-17" {
				t.Fatalf("unexpected record identity %+v", record)
			}
			if record.ActorID != actorID || record.TenantID != tenantID || record.UserID != uuid.Nil {
				t.Fatalf("unexpected ids actor=%s tenant=%s user=%s", record.ActorID, record.TenantID, record.UserID)
			}
			if record.Channel != activity.DefaultChannel || !record.OccurredAt.Equal(now) {
				t.Fatalf("unexpected channel/time %q %v", record.Channel, record.OccurredAt)
			}
			if record.Data["definition_code"] != "trip-order" || record.Data["order_id"] != "order-17" || record.Data["trip_id"] != "lisbon-weekend" {
				t.Fatalf("unexpected order data %v", record.Data)
			}
			for key, want := range tc.data {
				if record.Data[key] != want {
					t.Fatalf("expected %s=%v, got %v", key, want, record.Data[key])
				}
			}
			recipients, ok := record.Data["recipients"].([]string)
			if !ok || len(recipients) != 1 || recipients[0] != "desk@example.com" {
				t.Fatalf("expected recipients, got %v", record.Data["recipients"])
			}
		})
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbOrderSubmitted,
		ObjectType: activity.ObjectTypeOrder,
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifyKeepsNonUUIDActors(t *testing.T) {
	sink := &recordingSink{}
	tenant := uuid.New()
	hook := usersink.Hook{Sink: sink, DefaultTenant: tenant}

	err := hook.Notify(context.Background(), activity.BuildOptionRejectedEvent(activity.OrderEventInput{
		ActorID:  "agent-7",
		OrderID:  "order-1",
		OptionID: "travellers",
		NewValue: "two",
		Reason:   "invalid numeric input",
	}))
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil || record.Data["actor_ref"] != "agent-7" {
		t.Fatalf("expected actor kept as reference, got %v / %v", record.ActorID, record.Data["actor_ref"])
	}
	if record.TenantID != tenant {
		t.Fatalf("expected default tenant %s, got %s", tenant, record.TenantID)
	}
	if record.Data["new_value"] != "two" || record.Data["order_id"] != "order-1" {
		t.Fatalf("unexpected data %v", record.Data)
	}
	if _, ok := record.Data["user_ref"]; ok {
		t.Fatalf("expected empty user id to be skipped, got %v", record.Data)
	}
}
