package state

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

// MemoryStore keeps order form state in process, keyed by Ref.Identifier().
// It backs tests, examples and the CLI, and implements ConditionalStore so
// concurrent dispatches on one order cannot overwrite each other.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]memoryRecord[T]{}}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return record.snapshot, cloneMeta(record.meta), true, nil
}

// Save stores snapshot unconditionally.
func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(key, snapshot, meta), nil
}

// SaveIfMatch stores snapshot only while the stored ETag equals expected. An
// empty expected ETag means the order must not hold state yet.
func (s *MemoryStore[T]) SaveIfMatch(_ context.Context, ref Ref, snapshot T, meta Meta, expected string) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.records[key]
	switch {
	case exists && current.meta.ETag != expected:
		return current.meta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expected, current.meta.ETag)
	case !exists && expected != "":
		return Meta{}, fmt.Errorf("%w: expected %q, order holds no state", ErrETagMismatch, expected)
	}
	return s.put(key, snapshot, meta), nil
}

// Delete removes the record for ref. Missing records are not an error.
func (s *MemoryStore[T]) Delete(_ context.Context, ref Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// Len reports how many orders hold state.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore[T]) put(key string, snapshot T, meta Meta) Meta {
	s.records[key] = memoryRecord[T]{snapshot: snapshot, meta: cloneMeta(meta)}
	return cloneMeta(meta)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra != nil {
		out.Extra = maps.Clone(meta.Extra)
	}
	return out
}
