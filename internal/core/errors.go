package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. All are terminal to the triggering
// call: nothing is retried internally and no partial mutation is committed
// once one of these is returned.

// ValidationError marks malformed input: empty names, non-positive
// amounts, inverted budget windows.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError marks a reference that does not resolve, or the absence of
// an active budget on check.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NewNotFoundError(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// CycleError marks a reparent that would close a loop in the category
// forest.
type CycleError struct {
	CategoryID int64
	ParentID   int64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("moving category %d under %d would create a cycle", e.CategoryID, e.ParentID)
}

func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// CrossAccountError marks a referenced entity that belongs to a different
// account than the operation's scope.
type CrossAccountError struct {
	Msg string
}

func (e *CrossAccountError) Error() string { return e.Msg }

func NewCrossAccountError(format string, args ...any) error {
	return &CrossAccountError{Msg: fmt.Sprintf(format, args...)}
}

func IsCrossAccountError(err error) bool {
	var ca *CrossAccountError
	return errors.As(err, &ca)
}
