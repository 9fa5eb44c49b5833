package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/leafwire/leafwire/pkg/export"
	"github.com/leafwire/leafwire/pkg/session"
)

func asCoded(err error) (*CodedError, bool) {
	var ce *CodedError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// FromSession classifies an error returned by pkg/session or pkg/export
// into a CodedError. Unknown errors are wrapped without a code.
func FromSession(err error) *CodedError {
	if err == nil {
		return nil
	}
	if ce, ok := asCoded(err); ok {
		return ce
	}

	var (
		connErr   *session.ConnectionError
		remoteErr *session.RemoteError
		docErr    *export.DocumentError
	)
	switch {
	case stderrors.As(err, &connErr):
		return fromConnection(connErr, err)

	case stderrors.As(err, &docErr):
		// A per-document failure is reported with its own cause classified.
		inner := FromSession(docErr.Err)
		return New("E501").Wrap(err).WithDetailf("%s: %s", docErr.Path, inner.Message)

	case stderrors.As(err, &remoteErr):
		return New("E401").Wrap(err).WithDetailf("%s %s: %s", remoteErr.Method, remoteErr.DocID, remoteErr.Message())

	case stderrors.Is(err, session.ErrProtocolViolation):
		return New("E301").Wrap(err)

	case stderrors.Is(err, session.ErrCallTimeout):
		return New("E302").Wrap(err)

	case stderrors.Is(err, session.ErrSessionClosed):
		return New("E303").Wrap(err)

	case stderrors.Is(err, export.ErrDestination):
		return New("E502").Wrap(err)

	case stderrors.Is(err, context.Canceled):
		return Newf(CategoryCLI, "Interrupted")

	default:
		return Newf(CategoryCLI, "%s", err.Error())
	}
}

func fromConnection(connErr *session.ConnectionError, err error) *CodedError {
	switch {
	case connErr.StatusCode == http.StatusUnauthorized || connErr.StatusCode == http.StatusForbidden:
		return New("E201").Wrap(err).WithDetailf("The %s was rejected with HTTP %d.", connErr.Op, connErr.StatusCode)
	case connErr.Op == "handshake":
		return New("E202").Wrap(err)
	case connErr.Op == "dial":
		return New("E203").Wrap(err)
	default:
		return New("E204").Wrap(err)
	}
}
