// Package usersink forwards order activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-order-options/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts order activity events to a go-users ActivitySink.
//
// go-users keys actors, users and tenants by UUID while order forms accept
// any actor string. Ids that do not parse are recorded as uuid.Nil and the
// original text is kept in Data under "<field>_ref". DefaultTenant is used
// for events that carry no tenant at all.
type Hook struct {
	Sink          usertypes.ActivitySink
	DefaultTenant uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, h.record(normalized))
}

func (h Hook) record(event activity.Event) usertypes.ActivityRecord {
	data := event.Metadata
	if data == nil {
		data = map[string]any{}
	}
	record := usertypes.ActivityRecord{
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
	}
	record.ActorID = parseID(data, "actor", event.ActorID)
	record.UserID = parseID(data, "user", event.UserID)
	if event.TenantID == "" {
		record.TenantID = h.DefaultTenant
	} else {
		record.TenantID = parseID(data, "tenant", event.TenantID)
	}

	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if event.ObjectType == activity.ObjectTypeOrder {
		data["order_id"] = event.ObjectID
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = event.Recipients
	}
	if len(data) > 0 {
		record.Data = data
	}
	return record
}

// parseID returns the UUID in raw, recording raw under "<field>_ref" when it
// is set but not a UUID.
func parseID(data map[string]any, field, raw string) uuid.UUID {
	value := strings.TrimSpace(raw)
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		data[field+"_ref"] = value
		return uuid.Nil
	}
	return id
}
