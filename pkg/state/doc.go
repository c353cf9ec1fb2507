// Package state holds the per-order form state behind a Store and runs
// option changes against it.
//
// Responsibilities:
//   - Store[T] only loads, saves and deletes a single snapshot for one Ref.
//   - Form drives one order through its lifecycle: Mount, Dispatch for every
//     option change, Reset, Submit and Teardown.
//   - The orderopts reducer stays persistence-agnostic; Form loads the
//     current selection, applies the change and saves the result.
//
// Data flow:
//
//	Store.Load -> orderopts.ApplyChange -> Store.Save -> activity.Emitter
//
// Concurrency:
//
//	Every save mints a new Meta.ETag. Callers that pass the ETag they last saw
//	get ErrETagMismatch when another writer got there first.
//
// Keys:
//
//	Ref.Identifier() provides the canonical storage key
//	trip/<trip id>/order/<order id>.
package state
