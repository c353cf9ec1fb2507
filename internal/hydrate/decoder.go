// Package hydrate turns loosely typed catalog entries (maps decoded from JSON
// or YAML) into typed structs, with hooks that normalise legacy spellings
// before decoding and check the result after.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-order-options/layering"
)

// Context identifies the entry being decoded: the catalog source, the
// position of the entry, and its id once known.
type Context struct {
	Source string
	Index  int
	ID     string
}

func (c Context) String() string {
	label := fmt.Sprintf("entry %d", c.Index)
	if c.Source != "" {
		label = c.Source + " " + label
	}
	if c.ID != "" {
		label = fmt.Sprintf("%s (%s)", label, c.ID)
	}
	return label
}

// Stage names the step of Decode that failed.
type Stage string

const (
	StagePayload  Stage = "payload"
	StagePreHook  Stage = "pre-hook"
	StageDecode   Stage = "decode"
	StagePostHook Stage = "post-hook"
)

// DecodeError reports which entry failed and at which stage.
type DecodeError struct {
	Context Context
	Stage   Stage
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hydrate: %s %s: %v", e.Stage, e.Context, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PreHook rewrites the payload before decoding. It receives a private copy
// and may mutate it in place.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook adjusts or checks the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts catalog entries into T.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	useNumber bool
}

// WithPreHook appends a pre-decode hook.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.preHooks = append(d.preHooks, hook)
		}
	}
}

// WithPostHook appends a post-decode hook.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.postHooks = append(d.postHooks, hook)
		}
	}
}

// WithUseNumber keeps numbers in untyped fields as json.Number.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.useNumber = true
	}
}

// NewDecoder constructs a Decoder with the supplied options.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode runs the pre-hooks on a deep copy of payload, decodes the result
// into T and runs the post-hooks. The caller's payload is never modified.
// Failures are *DecodeError values.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T
	if payload == nil {
		return zero, &DecodeError{Context: ctx, Stage: StagePayload, Err: fmt.Errorf("payload is nil")}
	}

	current := layering.Clone(payload).(map[string]any)
	ctx.ID = entryID(current, ctx.ID)
	for _, hook := range d.preHooks {
		next, err := hook(ctx, current)
		if err != nil {
			return zero, &DecodeError{Context: ctx, Stage: StagePreHook, Err: err}
		}
		if next != nil {
			current = next
		}
	}
	ctx.ID = entryID(current, ctx.ID)

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, &DecodeError{Context: ctx, Stage: StageDecode, Err: err}
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.useNumber {
		decoder.UseNumber()
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, &DecodeError{Context: ctx, Stage: StageDecode, Err: err}
	}

	for _, hook := range d.postHooks {
		if err := hook(ctx, &result); err != nil {
			return zero, &DecodeError{Context: ctx, Stage: StagePostHook, Err: err}
		}
	}
	return result, nil
}

func entryID(payload map[string]any, fallback string) string {
	if id, ok := payload["id"].(string); ok && id != "" {
		return id
	}
	return fallback
}
