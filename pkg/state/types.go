package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrETagMismatch indicates a write based on a stale snapshot.
	ErrETagMismatch = errors.New("state: etag mismatch")
	// ErrUnknownOption indicates a change for an option the catalog does not list.
	ErrUnknownOption = errors.New("state: unknown option")
	// ErrNotMounted indicates an operation on an order form that holds no state.
	ErrNotMounted = errors.New("state: order form not mounted")
	// ErrRequiredOption indicates a submit with required options left empty.
	ErrRequiredOption = errors.New("state: required option missing")
)

// Ref identifies the order form state of one order within one trip.
type Ref struct {
	TripID  string
	OrderID string
}

// Identifier returns the canonical storage key: trip/<trip>/order/<order>.
func (r Ref) Identifier() (string, error) {
	trip := strings.TrimSpace(r.TripID)
	order := strings.TrimSpace(r.OrderID)
	if trip == "" {
		return "", fmt.Errorf("state: trip id is required")
	}
	if order == "" {
		return "", fmt.Errorf("state: order id is required")
	}
	return fmt.Sprintf("trip/%s/order/%s", trip, order), nil
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads, saves and deletes one snapshot per Ref.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
	Delete(ctx context.Context, ref Ref) error
}

// ConditionalStore is a Store that can refuse a save when the stored ETag is
// no longer the one the caller loaded. Form uses it when available.
type ConditionalStore[T any] interface {
	Store[T]
	SaveIfMatch(ctx context.Context, ref Ref, snapshot T, meta Meta, expected string) (Meta, error)
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func checkETag(expected, loaded Meta) error {
	if expected.ETag != "" && loaded.ETag != "" && expected.ETag != loaded.ETag {
		return fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expected.ETag, loaded.ETag)
	}
	return nil
}
