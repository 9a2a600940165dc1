package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Stores and the report engine return these wrapped so callers
// can branch with errors.Is without knowing the backend.
var (
	ErrValidation = errors.New("validation rejected")
	ErrStorage    = errors.New("storage failure")
	ErrConstraint = errors.New("constraint violation")
	ErrNotFound   = errors.New("not found")
	ErrEmptyInput = errors.New("empty input")
	ErrDelivery   = errors.New("delivery failure")
)

// ValidationError names the field that failed a construction rule, the limit it
// violated and the offending value.
type ValidationError struct {
	Entity EntityType
	Field  string
	Limit  string
	Value  any
	// Kind optionally refines the rejection, e.g. ErrEmptyInput.
	Kind error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s must be %s: %v", e.Entity, e.Field, e.Limit, e.Value)
}

// Is reports ErrValidation for every rejection and Kind when one is set.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.Kind != nil && target == e.Kind
}

// StoreError describes a failed store operation. Kind is one of ErrStorage,
// ErrConstraint, ErrNotFound or ErrEmptyInput; Err carries the driver error.
type StoreError struct {
	Op     string
	Entity EntityType
	ID     uint32
	Kind   error
	Err    error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound builds the not-found error returned by lookups and deletes.
func NotFound(op string, entity EntityType, id uint32) error {
	return &StoreError{Op: op, Entity: entity, ID: id, Kind: ErrNotFound}
}

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
