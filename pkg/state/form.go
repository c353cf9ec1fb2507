package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	orderopts "github.com/goliatone/go-order-options"
	"github.com/goliatone/go-order-options/pkg/activity"
	"github.com/goliatone/go-order-options/rules"
	"github.com/goliatone/go-order-options/schema/openapi"
)

// SelectionValidator checks a complete selection before submit. When Form has
// none, the catalog's schema/openapi Validator is used.
type SelectionValidator interface {
	Validate(orderopts.Selection) error
}

// Form runs the order form lifecycle for every order sharing one catalog.
// Each call completes one change (load, reduce, save) before returning, so
// concurrent callers are serialised only by the Store and ETags.
type Form struct {
	Store     Store[orderopts.Selection]
	Catalog   *orderopts.Catalog
	Rules     rules.Evaluator
	Validator SelectionValidator
	Emitter   *activity.Emitter
	Logger    Logger
	Now       func() time.Time
}

type actorKey struct{}

// WithActor attaches the acting user id to ctx. It is copied onto emitted
// activity events.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func actorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// Mount returns the stored selection for ref, creating an empty one when the
// order has no state yet.
func (f *Form) Mount(ctx context.Context, ref Ref) (orderopts.Selection, Meta, error) {
	if err := f.check(); err != nil {
		return orderopts.Selection{}, Meta{}, err
	}
	sel, meta, ok, err := f.Store.Load(ctx, ref)
	if err != nil {
		return orderopts.Selection{}, Meta{}, fmt.Errorf("state: load %s: %w", f.key(ref), err)
	}
	if ok {
		return sel, meta, nil
	}
	return f.save(ctx, ref, orderopts.NewSelection(), Meta{})
}

// Dispatch applies one change event to the option optionID of ref.
//
// Rejected changes (bad numbers, bad dates, malformed events) are logged,
// reported as activity and swallowed: the stored selection is returned as is.
// Changes that leave the selection unchanged are not saved.
func (f *Form) Dispatch(ctx context.Context, ref Ref, meta Meta, optionID string, ev orderopts.Event) (orderopts.Selection, Meta, error) {
	if err := f.check(); err != nil {
		return orderopts.Selection{}, Meta{}, err
	}
	kind := f.Catalog.Kind(optionID)
	if kind == orderopts.KindUnknown {
		return orderopts.Selection{}, Meta{}, fmt.Errorf("%w: %q", ErrUnknownOption, optionID)
	}

	current, loaded, ok, err := f.Store.Load(ctx, ref)
	if err != nil {
		return orderopts.Selection{}, Meta{}, fmt.Errorf("state: load %s: %w", f.key(ref), err)
	}
	if !ok {
		current, loaded = orderopts.NewSelection(), Meta{}
	}
	if err := checkETag(meta, loaded); err != nil {
		return current, loaded, err
	}

	start := f.now()
	entry := ChangeLog{Ref: ref, OptionID: optionID, Kind: kind, Event: ev}
	next, err := orderopts.ApplyChange(current, optionID, kind, ev)
	entry.Duration = f.now().Sub(start)
	if err != nil {
		entry.Err = err
		if !orderopts.IsRejected(err) {
			f.logger().LogChange(entry)
			return current, loaded, err
		}
		entry.Outcome = OutcomeRejected
		f.logger().LogChange(entry)
		f.emit(ctx, activity.BuildOptionRejectedEvent(f.eventInput(ctx, ref, optionID, kind, rawValue(current, optionID), ev.Value, loaded, err)))
		return current, loaded, nil
	}
	if next.Same(current) {
		entry.Outcome = OutcomeNoop
		f.logger().LogChange(entry)
		return current, loaded, nil
	}

	saved, savedMeta, err := f.save(ctx, ref, next, mergeMeta(loaded, Meta{Extra: meta.Extra}))
	if err != nil {
		return current, loaded, err
	}
	entry.Outcome = OutcomeApplied
	f.logger().LogChange(entry)

	oldValue := rawValue(current, optionID)
	if value, present := saved.Get(optionID); present {
		f.emit(ctx, activity.BuildOptionSelectedEvent(f.eventInput(ctx, ref, optionID, kind, oldValue, value.Raw(), savedMeta, nil)))
	} else {
		f.emit(ctx, activity.BuildOptionClearedEvent(f.eventInput(ctx, ref, optionID, kind, oldValue, nil, savedMeta, nil)))
	}
	return saved, savedMeta, nil
}

// Reset replaces the selection of ref with an empty one.
func (f *Form) Reset(ctx context.Context, ref Ref, meta Meta) (orderopts.Selection, Meta, error) {
	if err := f.check(); err != nil {
		return orderopts.Selection{}, Meta{}, err
	}
	_, loaded, _, err := f.Store.Load(ctx, ref)
	if err != nil {
		return orderopts.Selection{}, Meta{}, fmt.Errorf("state: load %s: %w", f.key(ref), err)
	}
	if err := checkETag(meta, loaded); err != nil {
		return orderopts.Selection{}, loaded, err
	}
	return f.save(ctx, ref, orderopts.NewSelection(), loaded)
}

// Submit finalises the order: every applicable required option must hold a
// value and the selection must pass the Validator. On success the submitted
// selection is reported as activity and the form state is dropped.
func (f *Form) Submit(ctx context.Context, ref Ref) (orderopts.Selection, error) {
	if err := f.check(); err != nil {
		return orderopts.Selection{}, err
	}
	sel, meta, ok, err := f.Store.Load(ctx, ref)
	if err != nil {
		return orderopts.Selection{}, fmt.Errorf("state: load %s: %w", f.key(ref), err)
	}
	if !ok {
		return orderopts.Selection{}, fmt.Errorf("%w: %s", ErrNotMounted, f.key(ref))
	}

	now := f.now()
	applicable, err := f.Catalog.Applicable(sel, f.Rules, rules.Context{OrderID: ref.OrderID, Now: &now})
	if err != nil {
		return sel, fmt.Errorf("state: evaluate option rules: %w", err)
	}
	var missing []string
	for _, def := range applicable {
		if def.Required && !sel.Has(def.ID) {
			missing = append(missing, def.ID)
		}
	}
	if len(missing) > 0 {
		return sel, fmt.Errorf("%w: %s", ErrRequiredOption, strings.Join(missing, ", "))
	}
	validator, err := f.validator()
	if err != nil {
		return sel, err
	}
	if err := validator.Validate(sel); err != nil {
		return sel, err
	}

	input := f.eventInput(ctx, ref, "", orderopts.KindUnknown, nil, sel.Map(), meta, nil)
	f.emit(ctx, activity.BuildOrderSubmittedEvent(input))
	if err := f.Store.Delete(ctx, ref); err != nil {
		return sel, fmt.Errorf("state: delete %s: %w", f.key(ref), err)
	}
	return sel, nil
}

// Teardown drops the form state of ref without submitting it.
func (f *Form) Teardown(ctx context.Context, ref Ref) error {
	if err := f.check(); err != nil {
		return err
	}
	if err := f.Store.Delete(ctx, ref); err != nil {
		return fmt.Errorf("state: delete %s: %w", f.key(ref), err)
	}
	return nil
}

func (f *Form) check() error {
	if f == nil || f.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	if f.Catalog == nil {
		return fmt.Errorf("state: catalog is required")
	}
	return nil
}

func (f *Form) save(ctx context.Context, ref Ref, sel orderopts.Selection, meta Meta) (orderopts.Selection, Meta, error) {
	expected := meta.ETag
	meta.SnapshotID = uuid.NewString()
	meta.ETag = uuid.NewString()
	meta.UpdatedAt = f.now()
	var (
		saved Meta
		err   error
	)
	if conditional, ok := f.Store.(ConditionalStore[orderopts.Selection]); ok {
		saved, err = conditional.SaveIfMatch(ctx, ref, sel, meta, expected)
	} else {
		saved, err = f.Store.Save(ctx, ref, sel, meta)
	}
	if err != nil {
		return orderopts.Selection{}, Meta{}, fmt.Errorf("state: save %s: %w", f.key(ref), err)
	}
	return sel, saved, nil
}

func (f *Form) emit(ctx context.Context, event activity.Event) {
	if f.Emitter == nil {
		return
	}
	if err := f.Emitter.Emit(ctx, event); err != nil {
		f.logger().LogChange(ChangeLog{OptionID: event.OptionID(), Err: fmt.Errorf("state: emit %s: %w", event.Verb, err)})
	}
}

func (f *Form) eventInput(ctx context.Context, ref Ref, optionID string, kind orderopts.Kind, oldValue, newValue any, meta Meta, rejection error) activity.OrderEventInput {
	input := activity.OrderEventInput{
		ActorID:    actorFrom(ctx),
		TripID:     ref.TripID,
		OrderID:    ref.OrderID,
		OptionID:   optionID,
		OldValue:   oldValue,
		NewValue:   newValue,
		SnapshotID: meta.SnapshotID,
		OccurredAt: f.now(),
	}
	if kind != orderopts.KindUnknown {
		input.Kind = kind.String()
	}
	if rejection != nil {
		input.Reason = rootCause(rejection).Error()
	}
	return input
}

func (f *Form) validator() (SelectionValidator, error) {
	if f.Validator != nil {
		return f.Validator, nil
	}
	return openapi.NewValidator(f.Catalog)
}

func (f *Form) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Form) logger() Logger {
	if f.Logger == nil {
		return noopLogger{}
	}
	return f.Logger
}

func (f *Form) key(ref Ref) string {
	key, err := ref.Identifier()
	if err != nil {
		return fmt.Sprintf("%+v", ref)
	}
	return key
}

func rawValue(sel orderopts.Selection, optionID string) any {
	value, ok := sel.Get(optionID)
	if !ok {
		return nil
	}
	return value.Raw()
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
