package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leafwire/leafwire/pkg/async"
	"github.com/leafwire/leafwire/pkg/protocol"
	"github.com/leafwire/leafwire/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Remote methods.
const (
	MethodJoinDoc  = "joinDoc"
	MethodLeaveDoc = "leaveDoc"
)

// JoinDocOptions is the options argument of joinDoc.
type JoinDocOptions struct {
	EncodeRanges bool `json:"encodeRanges"`
}

// Call issues a remote call and waits for its ACK. The result is the ACK's
// JSON array, empty if the server sent anything else.
//
// The wait is bounded by Config.RPCTimeout, by ctx, and by the session: if
// either loop stops, Call returns ErrSessionClosed. A call that times out
// stays registered; a late ACK for it is simply discarded.
func (s *Session) Call(ctx context.Context, method string, args ...any) (result []json.RawMessage, err error) {
	if s.sendCtx.Err() != nil || s.listenCtx.Err() != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionClosed, method)
	}

	id := s.seq.Add(1)
	s.callsIssued.Add(1)

	ctx, span := s.tracer.Start(ctx, "leafwire."+method,
		attribute.String("leafwire.method", method),
		attribute.Int64("leafwire.seq", int64(id)),
		attribute.String("leafwire.session_id", s.ID),
	)
	start := time.Now()
	defer func() {
		s.metrics.ObserveCall(method, outcome(err), time.Since(start))
		telemetry.End(span, err)
	}()

	pkt, err := protocol.NewCall(id, method, args...)
	if err != nil {
		return nil, fmt.Errorf("session: encode %s: %w", method, err)
	}

	fut := async.NewFuture[[]json.RawMessage]()
	if !s.calls.TryInsert(id, fut) {
		return nil, &ProtocolError{Op: method, Message: fmt.Sprintf("sequence id %d reused", id), Err: ErrDuplicateSequence}
	}
	s.outgoing.Enqueue(pkt.Encode())

	waitCtx, cancel := s.callContext(ctx)
	defer cancel()

	result, err = fut.Read(waitCtx)
	if err != nil {
		return nil, s.callError(ctx, method, id)
	}
	return result, nil
}

// callContext derives the wait context of a call: ctx bounded by the RPC
// timeout and cancelled when either loop stops.
func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	waitCtx, cancel := context.WithTimeout(ctx, s.config.RPCTimeout)
	stopSend := context.AfterFunc(s.sendCtx, cancel)
	stopListen := context.AfterFunc(s.listenCtx, cancel)
	return waitCtx, func() {
		stopSend()
		stopListen()
		cancel()
	}
}

// callError explains why a call's wait ended without a result.
func (s *Session) callError(ctx context.Context, method string, id uint64) error {
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case s.sendCtx.Err() != nil || s.listenCtx.Err() != nil:
		return fmt.Errorf("%w: %s seq %d", ErrSessionClosed, method, id)
	default:
		return fmt.Errorf("%w: %s seq %d after %s", ErrCallTimeout, method, id, s.config.RPCTimeout)
	}
}

// JoinDoc asks the server to start tracking docID for this client and
// returns the raw result: [error, lines, version, ranges].
func (s *Session) JoinDoc(ctx context.Context, docID string, opts JoinDocOptions) ([]json.RawMessage, error) {
	return s.Call(ctx, MethodJoinDoc, docID, opts)
}

// LeaveDoc releases the server-side tracking of docID.
func (s *Session) LeaveDoc(ctx context.Context, docID string) error {
	result, err := s.Call(ctx, MethodLeaveDoc, docID)
	if err != nil {
		return err
	}
	if len(result) > 0 && !protocol.IsNull(result[0]) {
		return &RemoteError{Method: MethodLeaveDoc, DocID: docID, Descriptor: result[0]}
	}
	return nil
}

// GetDocumentLines fetches the current text of docID, one string per line.
// A server-side failure is a *RemoteError. The document is left again
// afterwards; that result is ignored.
func (s *Session) GetDocumentLines(ctx context.Context, docID string) (_ []string, err error) {
	ctx, span := s.tracer.Start(ctx, "leafwire.get_document_lines", attribute.String("leafwire.doc_id", docID))
	defer func() { telemetry.End(span, err) }()

	result, err := s.JoinDoc(ctx, docID, JoinDocOptions{EncodeRanges: true})
	if err != nil {
		return nil, err
	}
	if len(result) > 0 && !protocol.IsNull(result[0]) {
		return nil, &RemoteError{Method: MethodJoinDoc, DocID: docID, Descriptor: result[0]}
	}
	if len(result) < 2 {
		return nil, &ProtocolError{Op: MethodJoinDoc, Message: "result has no lines"}
	}

	var lines []string
	if err := json.Unmarshal(result[1], &lines); err != nil {
		return nil, &ProtocolError{Op: MethodJoinDoc, Message: "lines are not a string array", Err: err}
	}
	if lines == nil {
		lines = []string{}
	}
	protocol.UnmangleLines(lines)

	if err := s.LeaveDoc(ctx, docID); err != nil {
		s.logger.Debug("leaveDoc failed", "doc_id", docID, "error", err)
	}
	return lines, nil
}
