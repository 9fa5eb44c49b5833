// Package protocol implements the text wire protocol spoken by the
// real-time endpoint of the document service.
//
// The protocol is the legacy socket.io v0.9 framing. Every WebSocket text
// message carries exactly one packet. There is no length prefix and no
// binary encoding: fields are ASCII and separated by colons.
//
// # Wire Format
//
//	<opcode>:<seq>[+]:<endpoint>[:<payload>]
//
//   - opcode: a single digit '0'..'8'
//   - seq: optional decimal sequence id; '+' marks "acknowledge with data"
//   - endpoint: bytes up to the next colon, normally empty
//   - payload: everything after the endpoint separator
//
// ACK packets move the sequence id. The normal seq field must be empty and
// the acknowledged id follows the endpoint separator:
//
//	6::<endpoint>:<seq>[+]<payload>
//
// # Opcodes
//
//   - OpDisconnect (0): peer is going away
//   - OpConnect (1): handshake acknowledgement
//   - OpHeartbeat (2): keepalive, echoed back verbatim
//   - OpMessage (3), OpJSON (4): reserved
//   - OpEvent (5): {"name": ..., "args": [...]} push or remote call
//   - OpAck (6): result of a remote call
//   - OpError (7), OpNoop (8): reserved
//
// # Document Content
//
// Document lines arrive double-escaped. Unmangle reverses that transform and
// Mangle reproduces it for tests and tooling.
package protocol
