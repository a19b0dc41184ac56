package load

import (
	"errors"
	"strings"
)

// ErrInvalidDocument is matched by every DecodeError.
var ErrInvalidDocument = errors.New("xjoin/load: invalid schema document")

// DecodeError reports a malformed value in a schema document.
type DecodeError struct {
	File    string // Source file, if known
	Path    string // Location inside the document, e.g. fields[2].type[1]
	Key     string // Wire key being decoded
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("xjoin/load: decode error")
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Key != "" {
		b.WriteString(" key ")
		b.WriteString(e.Key)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrInvalidDocument.
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidDocument
}

// IsDecodeError returns true if the error is a DecodeError.
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	var e *DecodeError
	return errors.As(err, &e)
}
