package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an absent record. Absence is always signalled with this
// sentinel; it is never inferred from a zero count or zero sum.
var ErrNotFound = errors.New("not found")

// ValidationError is malformed client input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ReferenceError is an unresolvable entity reference encountered while
// building an aggregate, e.g. an order item naming a product that does not
// exist.
type ReferenceError struct {
	Entity string
	ID     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %s cannot be resolved", e.Entity, e.ID)
}

// CreationError is a persistence failure while committing a new aggregate.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string { return "order cannot be created: " + e.Err.Error() }

func (e *CreationError) Unwrap() error { return e.Err }
