package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leafwire/leafwire/pkg/protocol"
)

// Event names handled by the receive loop.
const (
	eventJoinProjectResponse = "joinProjectResponse"
	clientTrackingPrefix     = "clientTracking."
)

// sendLoop writes queued frames until sendCtx is cancelled or the peer has
// closed the socket. On cancellation it sends a close frame.
func (s *Session) sendLoop() error {
	defer s.sendCancel()

	for {
		frame, err := s.outgoing.Dequeue(s.sendCtx)
		if err != nil {
			if s.peerClosed.Load() {
				return nil
			}
			s.closeOutput()
			return err
		}

		if s.peerClosed.Load() {
			s.logger.Debug("socket closed by peer, send loop stopping")
			return nil
		}

		if err := s.writeFrame(frame); err != nil {
			if s.peerClosed.Load() {
				return nil
			}
			return &ConnectionError{Op: "write", Err: err}
		}
	}
}

func (s *Session) writeFrame(frame []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return err
	}
	s.framesSent.Add(1)
	s.metrics.FrameSent(opcodeLabel(frame))
	return nil
}

// closeOutput starts the close handshake. Failure is only logged: the
// receive loop will see the broken socket.
func (s *Session) closeOutput() {
	err := s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(s.config.WriteTimeout),
	)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		s.logger.Debug("close frame not sent", "error", err)
	}
}

// receiveLoop reads and dispatches messages until the server disconnects,
// the socket fails, a dispatch error occurs, or listenCtx is cancelled.
// Whatever the cause, both loops are stopped on return.
func (s *Session) receiveLoop() error {
	defer func() {
		s.sendCancel()
		s.listenCancel()
	}()

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return s.readError(err)
		}
		s.framesReceived.Add(1)

		p, err := protocol.Decode(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err, "frame", preview(msg))
			s.metrics.DecodeError()
			continue
		}
		s.metrics.FrameReceived(p.Opcode.String())

		stop, err := s.dispatch(p, msg)
		if err != nil {
			if errors.Is(err, protocol.ErrFormat) {
				s.logger.Warn("payload decode error", "opcode", p.Opcode.String(), "error", err)
				s.metrics.DecodeError()
				continue
			}
			s.logger.Error("dispatch error", "opcode", p.Opcode.String(), "error", err)
			return err
		}
		if stop {
			return nil
		}
	}
}

// readError classifies a failed read.
func (s *Session) readError(err error) error {
	if ctxErr := s.listenCtx.Err(); ctxErr != nil {
		// Our own deadline fired; the socket is unusable from here on.
		s.peerClosed.Store(true)
		return ctxErr
	}
	s.peerClosed.Store(true)

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Debug("socket closed", "error", err)
		return nil
	}
	s.logger.Error("read error", "error", err)
	return &ConnectionError{Op: "read", Err: err}
}

// dispatch handles one decoded packet. raw is the message it was decoded
// from. stop is true when the receive loop should end normally.
func (s *Session) dispatch(p *protocol.Packet, raw []byte) (stop bool, err error) {
	switch p.Opcode {
	case protocol.OpConnect:
		s.logger.Debug("connect acknowledged")
		return false, nil

	case protocol.OpHeartbeat:
		s.outgoing.Enqueue(raw)
		s.metrics.HeartbeatEchoed()
		return false, nil

	case protocol.OpEvent:
		return false, s.handleEvent(p)

	case protocol.OpAck:
		s.handleAck(p)
		return false, nil

	case protocol.OpDisconnect:
		s.logger.Info("server disconnected")
		return true, nil

	default:
		return false, &ProtocolError{Op: "dispatch", Message: fmt.Sprintf("unexpected opcode %s", p.Opcode)}
	}
}

func (s *Session) handleEvent(p *protocol.Packet) error {
	ev, err := protocol.DecodeEvent(p.Payload)
	if err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(ev.Name, clientTrackingPrefix):
		return nil

	case ev.Name == eventJoinProjectResponse:
		if len(ev.Args) == 0 {
			return &ProtocolError{Op: ev.Name, Message: "missing project argument"}
		}
		info := new(ProjectInfo)
		if err := json.Unmarshal(ev.Args[0], info); err != nil {
			return &ProtocolError{Op: ev.Name, Message: "invalid project", Err: err}
		}
		if err := s.projectInfo.Write(info); err != nil {
			return &ProtocolError{Op: ev.Name, Message: "received twice", Err: err}
		}
		s.logger.Debug("project info received", "name", info.Project.Name)
		return nil

	case s.ignored(ev.Name):
		s.logger.Debug("event ignored", "name", ev.Name)
		return nil

	default:
		return &ProtocolError{Op: "event", Message: fmt.Sprintf("unhandled event %q", ev.Name)}
	}
}

func (s *Session) handleAck(p *protocol.Packet) {
	f, ok := s.calls.TryRemove(p.ID)
	if !ok {
		s.logger.Debug("ack for unknown call dropped", "seq", p.ID)
		return
	}
	// The entry was just removed, so nothing else can write it.
	_ = f.Write(protocol.AckArgs(p.Payload))
}

func (s *Session) ignored(name string) bool {
	return slices.Contains(s.config.IgnoreEvents, name)
}

// opcodeLabel names the opcode of an encoded frame for metrics.
func opcodeLabel(frame []byte) string {
	if len(frame) == 0 || frame[0] < '0' || frame[0] > '8' {
		return "Unknown"
	}
	return protocol.Opcode(frame[0] - '0').String()
}

// preview truncates a frame for logging.
func preview(msg []byte) string {
	const limit = 64
	if len(msg) > limit {
		return string(msg[:limit]) + "..."
	}
	return string(msg)
}
