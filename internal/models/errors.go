package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so the presentation layer can map
// it to a response without string matching.
type ErrorKind string

const (
	// KindNotFound: a referenced entity id does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindInvalidInput: a value fails a field-level constraint.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindIllegalTransition: the requested status edge is not permitted.
	KindIllegalTransition ErrorKind = "illegal_transition"
	// KindIllegalState: the operation is not permitted in the entity's
	// current state, e.g. interacting with a closed report.
	KindIllegalState ErrorKind = "illegal_state"
	// KindInsufficientBalance: redemption exceeds available points.
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	// KindConflictRetry: transient contention on the per-citizen balance
	// lock; safe to retry immediately.
	KindConflictRetry ErrorKind = "conflict_retry"
	// KindInternal: anything the taxonomy does not cover.
	KindInternal ErrorKind = "internal"
)

// Error is a domain error carrying the failing entity and constraint.
type Error struct {
	Kind    ErrorKind
	Entity  string // e.g. "report", "citizen", "benefit"
	ID      string // identifier of the failing entity, if known
	Message string
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Kind, e.Entity, e.ID, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Entity, e.Message)
}

// E builds a domain error.
func E(kind ErrorKind, entity, id, message string) *Error {
	return &Error{Kind: kind, Entity: entity, ID: id, Message: message}
}

// KindOf extracts the kind from an error chain, or KindInternal for
// errors that are not domain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
