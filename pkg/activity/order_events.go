package activity

import (
	"strings"
	"time"
)

// Activity verbs emitted by the order form.
const (
	VerbOptionSelected = "order.option.selected"
	VerbOptionCleared  = "order.option.cleared"
	VerbOptionRejected = "order.option.rejected"
	VerbOrderSubmitted = "order.submitted"
)

// ObjectTypeOrder is the object type of every order event.
const ObjectTypeOrder = "order"

// OrderEventInput describes the common fields for order option events.
type OrderEventInput struct {
	ActorID        string
	UserID         string
	TenantID       string
	TripID         string
	OrderID        string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OptionID       string
	Kind           string
	OldValue       any
	NewValue       any
	Reason         string
	SnapshotID     string
	OccurredAt     time.Time
}

// BuildOptionSelectedEvent records an option receiving a new value.
func BuildOptionSelectedEvent(input OrderEventInput) Event {
	return buildOrderEvent(VerbOptionSelected, input)
}

// BuildOptionClearedEvent records an option removed from the selection.
func BuildOptionClearedEvent(input OrderEventInput) Event {
	return buildOrderEvent(VerbOptionCleared, input)
}

// BuildOptionRejectedEvent records a change that failed coercion. Reason
// carries the error text.
func BuildOptionRejectedEvent(input OrderEventInput) Event {
	return buildOrderEvent(VerbOptionRejected, input)
}

// BuildOrderSubmittedEvent records a submitted order. NewValue carries the
// final selection.
func BuildOrderSubmittedEvent(input OrderEventInput) Event {
	return buildOrderEvent(VerbOrderSubmitted, input)
}

func buildOrderEvent(verb string, input OrderEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		metadata = ensureMetadata(metadata)
		metadata[key] = value
	}
	if trip := strings.TrimSpace(input.TripID); trip != "" {
		set(MetaTripID, trip)
	}
	if option := strings.TrimSpace(input.OptionID); option != "" {
		set(MetaOptionID, option)
	}
	if input.Kind != "" {
		set(MetaOptionKind, input.Kind)
	}
	if input.OldValue != nil {
		set(MetaOldValue, input.OldValue)
	}
	if input.NewValue != nil {
		set(MetaNewValue, input.NewValue)
	}
	if input.Reason != "" {
		set(MetaReason, input.Reason)
	}
	if input.SnapshotID != "" {
		set(MetaSnapshotID, input.SnapshotID)
	}

	var recipients []string
	if len(input.Recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	return Event{
		Verb:           verb,
		ActorID:        strings.TrimSpace(input.ActorID),
		UserID:         strings.TrimSpace(input.UserID),
		TenantID:       strings.TrimSpace(input.TenantID),
		ObjectType:     ObjectTypeOrder,
		ObjectID:       strings.TrimSpace(input.OrderID),
		Channel:        strings.TrimSpace(input.Channel),
		DefinitionCode: strings.TrimSpace(input.DefinitionCode),
		Recipients:     recipients,
		Metadata:       metadata,
		OccurredAt:     input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
