package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for session error conditions.
var (
	// ErrSessionClosed is returned by calls that could not complete because
	// the session stopped.
	ErrSessionClosed = errors.New("session: session closed")

	// ErrCallTimeout is returned when a call's ACK does not arrive in time.
	ErrCallTimeout = errors.New("session: call timed out")

	// ErrProtocolViolation is matched by every *ProtocolError.
	ErrProtocolViolation = errors.New("session: protocol violation")

	// ErrRemote is matched by every *RemoteError.
	ErrRemote = errors.New("session: remote error")

	// ErrConnection is matched by every *ConnectionError.
	ErrConnection = errors.New("session: connection error")

	// ErrDuplicateSequence means a sequence id was issued twice.
	ErrDuplicateSequence = errors.New("session: duplicate sequence id")
)

// ProtocolError is a server message the session cannot accept. It ends the
// receive loop.
type ProtocolError struct {
	Op      string // Operation that failed
	Message string
	Err     error // Underlying error, may be nil
}

// Error returns the error message.
func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("session: protocol violation: %s: %s", e.Op, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProtocolViolation.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocolViolation
}

// ConnectionError is a failure to reach or talk to the server.
type ConnectionError struct {
	Op         string // handshake, dial, read, write
	StatusCode int    // HTTP status, 0 if none
	Err        error
}

// Error returns the error message.
func (e *ConnectionError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("session: %s failed with HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("session: %s failed with HTTP %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("session: %s failed: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConnection.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// RemoteError is an error the server reported for one call. It does not
// affect the session.
type RemoteError struct {
	Method     string
	DocID      string
	Descriptor json.RawMessage
}

// Error returns the error message.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("session: %s %s: remote error: %s", e.Method, e.DocID, e.Message())
}

// Message returns the descriptor as text. String descriptors are unquoted,
// objects with a "message" field yield that field, anything else is the raw
// JSON.
func (e *RemoteError) Message() string {
	var s string
	if err := json.Unmarshal(e.Descriptor, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Descriptor, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(e.Descriptor)
}

// Is reports whether target is ErrRemote.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// IsCancellation reports whether err is a cancellation outcome: a timeout,
// a closed session, or a done context.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCallTimeout) ||
		errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// outcome maps a call result to a low-cardinality metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRemote):
		return "remote_error"
	case errors.Is(err, ErrCallTimeout):
		return "timeout"
	case IsCancellation(err):
		return "cancelled"
	case errors.Is(err, ErrProtocolViolation):
		return "protocol_error"
	default:
		return "error"
	}
}
