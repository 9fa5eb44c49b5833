package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/leafwire/leafwire/pkg/async"
	"github.com/leafwire/leafwire/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// State is the lifecycle state of a session.
type State int32

const (
	StateConnecting State = iota // Socket handshake in progress
	StateOpen                    // Both loops running
	StateClosing                 // Leave in progress
	StateClosed                  // Terminal
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateOpen:
		return "Open"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Session is one joined project.
type Session struct {
	// Identity
	ID        string
	ProjectID string

	// Connection
	conn       *websocket.Conn
	peerClosed atomic.Bool // socket closed from the far side or broken

	state atomic.Int32

	// Calls
	seq         atomic.Uint64
	calls       *async.CallTable[[]json.RawMessage]
	outgoing    *async.Queue[[]byte]
	projectInfo *async.Future[*ProjectInfo]

	// Loop control. Cancelling sendCtx stops the send loop, cancelling
	// listenCtx stops the receive loop.
	sendCtx      context.Context
	sendCancel   context.CancelFunc
	listenCtx    context.Context
	listenCancel context.CancelFunc
	sendDone     chan struct{}
	listenDone   chan struct{}
	sendErr      error // valid after sendDone is closed
	listenErr    error // valid after listenDone is closed

	closeOnce sync.Once
	closeErr  error

	// Configuration
	config  *Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer

	// Counters for the close log line
	framesSent     atomic.Uint64
	framesReceived atomic.Uint64
	callsIssued    atomic.Uint64
}

// Connect joins projectID on server: it performs the HTTP handshake with
// client, upgrades to a WebSocket and starts the session loops. client must
// already be authenticated; its cookie jar is used for the upgrade. A nil
// config uses DefaultConfig.
//
// No session is returned on failure.
func Connect(ctx context.Context, client *http.Client, server *url.URL, projectID string, config *Config) (_ *Session, err error) {
	config = config.withDefaults()
	if client == nil {
		client = http.DefaultClient
	}

	ctx, span := config.Tracer.Start(ctx, "leafwire.connect", attribute.String("leafwire.project_id", projectID))
	defer func() { telemetry.End(span, err) }()

	hctx, cancel := context.WithTimeout(ctx, config.HandshakeTimeout)
	defer cancel()

	hs, err := OpenHandshake(hctx, client, server, projectID)
	if err != nil {
		return nil, err
	}
	wsURL, err := WebSocketURL(server, hs.Key, projectID)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Err: err}
	}

	dialer := websocket.DefaultDialer
	if config.Dialer != nil {
		dialer = config.Dialer
	}
	d := *dialer
	if d.Jar == nil {
		d.Jar = client.Jar
	}
	if d.HandshakeTimeout == 0 {
		d.HandshakeTimeout = config.HandshakeTimeout
	}

	header := http.Header{}
	header.Set("Origin", origin(server))

	conn, resp, err := d.DialContext(hctx, wsURL, header)
	if err != nil {
		cerr := &ConnectionError{Op: "dial", Err: err}
		if resp != nil {
			cerr.StatusCode = resp.StatusCode
			resp.Body.Close()
		}
		return nil, cerr
	}

	s := newSession(conn, projectID, config)
	s.start()
	return s, nil
}

// newSession wraps an upgraded connection. The loops are not started.
func newSession(conn *websocket.Conn, projectID string, config *Config) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:          id,
		ProjectID:   projectID,
		conn:        conn,
		calls:       async.NewCallTable[[]json.RawMessage](),
		outgoing:    async.NewQueue[[]byte](),
		projectInfo: async.NewFuture[*ProjectInfo](),
		sendDone:    make(chan struct{}),
		listenDone:  make(chan struct{}),
		config:      config,
		logger:      config.Logger.With("session_id", id, "project_id", projectID),
		metrics:     config.Metrics,
		tracer:      config.Tracer,
	}
	s.sendCtx, s.sendCancel = context.WithCancel(context.Background())
	s.listenCtx, s.listenCancel = context.WithCancel(context.Background())
	s.state.Store(int32(StateConnecting))
	conn.SetReadLimit(config.MaxMessageSize)
	return s
}

// start launches both loops and moves the session to Open.
func (s *Session) start() {
	// A blocked ReadMessage only returns once the deadline passes.
	context.AfterFunc(s.listenCtx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})

	go func() {
		defer close(s.sendDone)
		s.sendErr = s.sendLoop()
	}()
	go func() {
		defer close(s.listenDone)
		s.listenErr = s.receiveLoop()
	}()

	s.state.Store(int32(StateOpen))
	s.metrics.SessionOpened()
	s.logger.Info("session opened")
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Done is closed when the receive loop has stopped, whether through Leave
// or on its own.
func (s *Session) Done() <-chan struct{} {
	return s.listenDone
}

// Err returns why the receive loop stopped. It is nil while the loop runs
// and after a normal stop.
func (s *Session) Err() error {
	select {
	case <-s.listenDone:
		if isLoopCancellation(s.listenErr) {
			return nil
		}
		return s.listenErr
	default:
		return nil
	}
}

// GetProjectInfo waits for the project snapshot the server sends after
// joining. It returns ErrSessionClosed if the session stops first.
func (s *Session) GetProjectInfo(ctx context.Context) (*ProjectInfo, error) {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.listenCtx, cancel)
	defer stop()

	info, err := s.projectInfo.Read(waitCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrSessionClosed
	}
	return info, nil
}

// Leave shuts the session down and releases the socket. It returns the
// failures of either loop, joined; cancellations caused by the shutdown
// itself are not reported. Only the first call does anything; later calls
// return nil.
func (s *Session) Leave() error {
	first := false
	s.closeOnce.Do(func() {
		first = true
		s.closeErr = s.shutdown()
	})
	if !first {
		return nil
	}
	return s.closeErr
}

// Close is Leave, for io.Closer.
func (s *Session) Close() error {
	return s.Leave()
}

func (s *Session) shutdown() error {
	s.state.Store(int32(StateClosing))
	var errs []error

	// Outbound first: the send loop sends the close frame on its way out.
	s.sendCancel()
	<-s.sendDone
	if err := s.sendErr; err != nil && !isLoopCancellation(err) {
		errs = append(errs, err)
	}

	// Inbound after a grace period, so the close reply can be read.
	timer := time.AfterFunc(s.config.ShutdownGrace, s.listenCancel)
	<-s.listenDone
	timer.Stop()
	s.listenCancel()
	if err := s.listenErr; err != nil && !isLoopCancellation(err) {
		errs = append(errs, err)
	}

	if err := s.conn.Close(); err != nil {
		s.logger.Debug("socket close", "error", err)
	}

	s.state.Store(int32(StateClosed))
	s.metrics.SessionClosed()
	s.logger.Info("session closed",
		"frames_sent", s.framesSent.Load(),
		"frames_received", s.framesReceived.Load(),
		"calls", s.callsIssued.Load(),
		"pending_calls", s.calls.Len())

	return errors.Join(errs...)
}

// isLoopCancellation reports whether a loop error only reflects that the
// loop was asked to stop.
func isLoopCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
