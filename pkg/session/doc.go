// Package session is the client side of a joined project: one WebSocket,
// the frames flowing over it, and the remote calls multiplexed on top.
//
// # Architecture
//
//   - Session: owns the socket and the per-project state
//   - send loop: drains the outgoing queue onto the socket
//   - receive loop: reads messages, decodes them and dispatches by opcode
//   - call table: correlates outgoing calls with their ACKs by sequence id
//
// # Session Lifecycle
//
// Connect performs the HTTP handshake, upgrades to a WebSocket and starts
// both loops. The session is then Open. Leave stops the send loop first,
// which sends a close frame, then stops the receive loop after a short grace
// period so the server's close reply can arrive. The two directions are
// stopped separately because interrupting a blocked read leaves the
// connection unusable.
//
//	Connecting -> Open -> Closing -> Closed
//
// If the receive loop ends on its own (server disconnect, protocol
// violation, socket error) both loops stop and every pending call returns
// ErrSessionClosed. Done reports this; Leave still has to be called to
// release the socket.
//
// # Dispatch
//
//   - CONNECT: ignored
//   - HEARTBEAT: the exact bytes are queued back to the server
//   - EVENT: joinProjectResponse fills the project info; clientTracking.*
//     is ignored; anything else ends the session with a ProtocolError
//   - ACK: resolves the matching call, unknown ids are dropped
//   - DISCONNECT: ends the receive loop normally
//
// Malformed frames are logged and skipped.
//
// # Example Usage
//
//	sess, err := session.Connect(ctx, client, serverURL, projectID, nil)
//	if err != nil {
//	    return err
//	}
//	defer sess.Leave()
//
//	info, err := sess.GetProjectInfo(ctx)
//	lines, err := sess.GetDocumentLines(ctx, info.Project.RootDocID)
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. Calls issued from
// several goroutines are multiplexed over the one socket.
package session
