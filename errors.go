package xjoin

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for field validation.
var (
	// ErrMissingName is returned when a field has no name attribute.
	ErrMissingName = errors.New("xjoin: field is missing name attribute")

	// ErrMissingAvroType is returned when a field's resolved Avro type is empty.
	ErrMissingAvroType = errors.New("xjoin: field is missing type attribute")

	// ErrMissingXJoinType is returned when a field's resolved xjoin.type is empty.
	ErrMissingXJoinType = errors.New("xjoin: field is missing xjoin.type attribute")
)

// MissingNameError represents a field without a name.
type MissingNameError struct{}

// Error returns the error string.
func (e *MissingNameError) Error() string {
	return "xjoin: field is missing name attribute"
}

// Is reports whether the target error matches MissingNameError.
// This allows errors.Is(err, ErrMissingName) to return true.
func (e *MissingNameError) Is(err error) bool {
	return err == ErrMissingName
}

// NewMissingNameError returns a new MissingNameError.
func NewMissingNameError() *MissingNameError {
	return &MissingNameError{}
}

// IsMissingName returns true if the error is a MissingNameError.
func IsMissingName(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingNameError
	return errors.As(err, &e) || errors.Is(err, ErrMissingName)
}

// MissingAvroTypeError represents a field whose Avro type could not be resolved.
type MissingAvroTypeError struct {
	field string
}

// Error returns the error string.
func (e *MissingAvroTypeError) Error() string {
	return fmt.Sprintf("xjoin: field %s is missing type attribute", e.field)
}

// Is reports whether the target error matches MissingAvroTypeError.
func (e *MissingAvroTypeError) Is(err error) bool {
	return err == ErrMissingAvroType
}

// Field returns the name of the offending field.
func (e *MissingAvroTypeError) Field() string {
	return e.field
}

// NewMissingAvroTypeError returns a new MissingAvroTypeError for the given field.
func NewMissingAvroTypeError(field string) *MissingAvroTypeError {
	return &MissingAvroTypeError{field: field}
}

// IsMissingAvroType returns true if the error is a MissingAvroTypeError.
func IsMissingAvroType(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingAvroTypeError
	return errors.As(err, &e) || errors.Is(err, ErrMissingAvroType)
}

// MissingXJoinTypeError represents a field whose xjoin.type could not be resolved.
type MissingXJoinTypeError struct {
	field string
}

// Error returns the error string.
func (e *MissingXJoinTypeError) Error() string {
	return fmt.Sprintf("xjoin: field %s is missing xjoin.type attribute", e.field)
}

// Is reports whether the target error matches MissingXJoinTypeError.
func (e *MissingXJoinTypeError) Is(err error) bool {
	return err == ErrMissingXJoinType
}

// Field returns the name of the offending field.
func (e *MissingXJoinTypeError) Field() string {
	return e.field
}

// NewMissingXJoinTypeError returns a new MissingXJoinTypeError for the given field.
func NewMissingXJoinTypeError(field string) *MissingXJoinTypeError {
	return &MissingXJoinTypeError{field: field}
}

// IsMissingXJoinType returns true if the error is a MissingXJoinTypeError.
func IsMissingXJoinType(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingXJoinTypeError
	return errors.As(err, &e) || errors.Is(err, ErrMissingXJoinType)
}

// IsValidationError returns true if the error is any of the field validation errors.
func IsValidationError(err error) bool {
	return IsMissingName(err) || IsMissingAvroType(err) || IsMissingXJoinType(err)
}
