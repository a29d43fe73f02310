package models

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a referenced schedule, unit, booking or user does
// not exist. Handlers translate it into HTTP 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError indicates a unit is already booked or held by another
// requester, or a reference collides with existing state. Handlers translate
// it into HTTP 409. Callers are expected to re-search and retry with
// different units.
type ConflictError struct {
	Message string
	Units   []string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InvalidStateError indicates an operation was attempted on an entity whose
// current status forbids it, e.g. cancelling an already-cancelled booking.
// Handlers translate it into HTTP 422.
type InvalidStateError struct {
	Entity  string
	Status  string
	Message string
}

func (e *InvalidStateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is in status %s", e.Entity, e.Status)
}

// ValidationError indicates malformed or inconsistent request input.
// Handlers translate it into HTTP 400.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError anywhere in its chain.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsInvalidState reports whether err is an InvalidStateError anywhere in its chain.
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}
