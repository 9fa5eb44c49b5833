package protocol

import (
	"bytes"
)

// Opcode identifies the category of a packet. Its wire form is the digit
// '0' + Opcode.
type Opcode uint8

const (
	OpDisconnect Opcode = 0 // Peer is closing
	OpConnect    Opcode = 1 // Handshake acknowledgement
	OpHeartbeat  Opcode = 2 // Keepalive
	OpMessage    Opcode = 3 // Plain message (unused)
	OpJSON       Opcode = 4 // JSON message (unused)
	OpEvent      Opcode = 5 // Named event / remote call
	OpAck        Opcode = 6 // Remote call result
	OpError      Opcode = 7 // Error (unused)
	OpNoop       Opcode = 8 // No-op (unused)
)

// String returns the string representation of the opcode.
func (op Opcode) String() string {
	switch op {
	case OpDisconnect:
		return "Disconnect"
	case OpConnect:
		return "Connect"
	case OpHeartbeat:
		return "Heartbeat"
	case OpMessage:
		return "Message"
	case OpJSON:
		return "JSON"
	case OpEvent:
		return "Event"
	case OpAck:
		return "Ack"
	case OpError:
		return "Error"
	case OpNoop:
		return "Noop"
	default:
		return "Unknown"
	}
}

// Valid reports whether op is one of the nine defined opcodes.
func (op Opcode) Valid() bool {
	return op <= OpNoop
}

// Packet is one decoded frame. Packets are values; Decode copies the
// endpoint and payload out of the input buffer.
type Packet struct {
	Opcode Opcode

	// ID is the sequence id. For ACK packets it is the id being
	// acknowledged. Meaningful only when HasID is set.
	ID    uint64
	HasID bool

	// AckData is the '+' flag: the sender wants the ACK to carry data.
	AckData bool

	Endpoint string

	// Payload is nil when the frame has no payload separator at all, and
	// non-nil (possibly empty) otherwise.
	Payload []byte
}

// Heartbeat is the canonical heartbeat frame.
var Heartbeat = []byte("2::")

// Encode serializes the packet. It does not validate the packet: an ACK
// without an id or an endpoint containing ':' produces a frame that will not
// decode back to the same packet.
func (p *Packet) Encode() []byte {
	e := NewEncoder(8 + len(p.Endpoint) + len(p.Payload))
	_ = e.WriteByte('0' + byte(p.Opcode))
	_ = e.WriteByte(':')

	if p.Opcode == OpAck {
		_ = e.WriteByte(':')
		e.WriteString(p.Endpoint)
		_ = e.WriteByte(':')
		if p.HasID {
			e.WriteUint(p.ID)
		}
		if p.AckData {
			_ = e.WriteByte('+')
		}
		e.WriteBytes(p.Payload)
		return e.Bytes()
	}

	if p.HasID {
		e.WriteUint(p.ID)
	}
	if p.AckData {
		_ = e.WriteByte('+')
	}
	_ = e.WriteByte(':')
	e.WriteString(p.Endpoint)
	if p.Payload != nil {
		_ = e.WriteByte(':')
		e.WriteBytes(p.Payload)
	}
	return e.Bytes()
}

// Decode parses a single frame. Every failure is a *FormatError matching
// ErrFormat.
func Decode(data []byte) (*Packet, error) {
	if len(data) == 0 {
		return nil, formatErrorf(0, "empty frame")
	}
	d := NewDecoder(data)

	c, _ := d.Peek()
	if c < '0' || c > '8' {
		return nil, formatErrorf(0, "invalid opcode %q", c)
	}
	d.pos++
	p := &Packet{Opcode: Opcode(c - '0')}

	if err := d.Expect(':', "separator after opcode"); err != nil {
		return nil, err
	}

	idStart := d.Position()
	id, hasID, err := d.ReadDigits()
	if err != nil {
		return nil, err
	}
	ackData := d.Accept('+')
	if ackData && !hasID {
		return nil, formatErrorf(idStart, "ack flag without sequence id")
	}
	if p.Opcode == OpAck && (hasID || ackData) {
		return nil, formatErrorf(idStart, "ack packet with sequence id in the normal position")
	}
	p.ID, p.HasID, p.AckData = id, hasID, ackData

	if err := d.Expect(':', "separator after sequence id"); err != nil {
		return nil, err
	}

	endpoint, more := d.ReadUntil(':')
	p.Endpoint = string(endpoint)

	if p.Opcode == OpAck {
		if !more {
			return nil, formatErrorf(d.Position(), "ack packet without acknowledged id")
		}
		d.pos++
		return decodeAckTail(d, p)
	}

	if more {
		d.pos++
		p.Payload = bytes.Clone(d.ReadRest())
		if p.Payload == nil {
			p.Payload = []byte{}
		}
	}
	return p, nil
}

// decodeAckTail parses "<id>[+]" followed by the payload. Some servers put
// separators between the id and the payload; those are skipped.
func decodeAckTail(d *Decoder, p *Packet) (*Packet, error) {
	start := d.Position()
	id, ok, err := d.ReadDigits()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, formatErrorf(start, "ack packet without acknowledged id")
	}
	p.ID, p.HasID = id, true
	p.AckData = d.Accept('+')
	for d.Accept(':') {
	}
	p.Payload = bytes.Clone(d.ReadRest())
	if p.Payload == nil {
		p.Payload = []byte{}
	}
	return p, nil
}
