package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Event is the payload of an EVENT packet.
type Event struct {
	Name string
	Args []json.RawMessage
}

// eventWire is the strict JSON shape of an event payload. Unknown fields are
// rejected by the decoder.
type eventWire struct {
	Name *string           `json:"name"`
	Args []json.RawMessage `json:"args,omitempty"`
}

// DecodeEvent parses an EVENT payload. The payload must be a JSON object with
// a string "name" and an optional array "args"; any other field is a format
// error. A missing or null "args" yields an empty, non-nil slice.
func DecodeEvent(payload []byte) (*Event, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var w eventWire
	if err := dec.Decode(&w); err != nil {
		return nil, &FormatError{Offset: -1, Reason: "invalid event payload", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &FormatError{Offset: -1, Reason: "trailing data after event payload"}
	}
	if w.Name == nil {
		return nil, &FormatError{Offset: -1, Reason: "event payload without name"}
	}

	args := w.Args
	if args == nil {
		args = []json.RawMessage{}
	}
	return &Event{Name: *w.Name, Args: args}, nil
}

// EncodeEvent marshals the event payload. Args are always emitted, as an
// empty array when there are none.
func EncodeEvent(ev *Event) ([]byte, error) {
	args := ev.Args
	if args == nil {
		args = []json.RawMessage{}
	}
	return json.Marshal(struct {
		Name string            `json:"name"`
		Args []json.RawMessage `json:"args"`
	}{ev.Name, args})
}

// NewCall builds the EVENT packet for a remote call expecting an ACK with
// data under the given sequence id.
func NewCall(id uint64, method string, args ...any) (*Packet, error) {
	raw := make([]json.RawMessage, 0, len(args))
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	payload, err := EncodeEvent(&Event{Name: method, Args: raw})
	if err != nil {
		return nil, err
	}
	return &Packet{
		Opcode:  OpEvent,
		ID:      id,
		HasID:   true,
		AckData: true,
		Payload: payload,
	}, nil
}
