package activity

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-order-options/layering"
)

// Event is one activity record raised by an order form. Order events use
// ObjectType "order" with the order id as ObjectID; option details travel in
// Metadata (see the Meta* keys). IDs are plain strings so hooks decide how to
// parse them.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Metadata keys set by the order event builders.
const (
	MetaTripID     = "trip_id"
	MetaOptionID   = "option_id"
	MetaOptionKind = "option_kind"
	MetaOldValue   = "old_value"
	MetaNewValue   = "new_value"
	MetaReason     = "reason"
	MetaSnapshotID = "snapshot_id"
)

// OptionID returns the option the event refers to, if any.
func (e Event) OptionID() string {
	return e.metaString(MetaOptionID)
}

// TripID returns the trip the order belongs to, if recorded.
func (e Event) TripID() string {
	return e.metaString(MetaTripID)
}

func (e Event) metaString(key string) string {
	value, _ := e.Metadata[key].(string)
	return value
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// OnlyVerbs wraps hook so it only sees the listed verbs.
func OnlyVerbs(hook ActivityHook, verbs ...string) ActivityHook {
	return HookFunc(func(ctx context.Context, event Event) error {
		if hook == nil || !slices.Contains(verbs, event.Verb) {
			return nil
		}
		return hook.Notify(ctx, event)
	})
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and forwards it to every hook. Events without a
// verb, object type or object id are dropped. Hook failures are joined; one
// failing hook does not stop the others.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		// Each hook gets its own copy so selection values cannot leak between them.
		if err := hook.Notify(ctx, cloneEvent(normalized)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, deep copies metadata and recipients, and
// stamps OccurredAt when it is missing.
func NormalizeEvent(event Event) Event {
	normalized := cloneEvent(event)
	for _, field := range []*string{
		&normalized.Verb,
		&normalized.ActorID,
		&normalized.UserID,
		&normalized.TenantID,
		&normalized.ObjectType,
		&normalized.ObjectID,
		&normalized.Channel,
		&normalized.DefinitionCode,
	} {
		*field = strings.TrimSpace(*field)
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneEvent(event Event) Event {
	out := event
	out.Metadata = cloneMap(event.Metadata)
	if len(event.Recipients) > 0 {
		out.Recipients = append([]string{}, event.Recipients...)
	} else {
		out.Recipients = nil
	}
	return out
}

// cloneMap deep copies metadata; option values may be checkbox lists.
func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return layering.Clone(src).(map[string]any)
}
