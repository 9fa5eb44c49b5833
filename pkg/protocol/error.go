package protocol

import (
	"errors"
	"fmt"
)

// ErrFormat is the sentinel matched by every malformed-frame or
// malformed-payload error returned by this package.
var ErrFormat = errors.New("protocol: format error")

// FormatError describes where and why a frame failed to parse.
type FormatError struct {
	// Offset is the byte offset in the frame where parsing stopped.
	// It is -1 for payload-level errors.
	Offset int

	// Reason is a short human-readable description.
	Reason string

	// Err is the underlying error, if any (e.g. a JSON syntax error).
	Err error
}

// Error returns the error message.
func (e *FormatError) Error() string {
	var msg string
	if e.Offset >= 0 {
		msg = fmt.Sprintf("protocol: format error at offset %d: %s", e.Offset, e.Reason)
	} else {
		msg = fmt.Sprintf("protocol: format error: %s", e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErrorf(offset int, format string, args ...any) *FormatError {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
