package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Packet
	}{
		{
			name: "heartbeat",
			in:   "2::",
			want: Packet{Opcode: OpHeartbeat},
		},
		{
			name: "connect",
			in:   "1::",
			want: Packet{Opcode: OpConnect},
		},
		{
			name: "disconnect",
			in:   "0::",
			want: Packet{Opcode: OpDisconnect},
		},
		{
			name: "event_without_id",
			in:   `5:::{"name":"joinProjectResponse","args":[{}]}`,
			want: Packet{Opcode: OpEvent, Payload: []byte(`{"name":"joinProjectResponse","args":[{}]}`)},
		},
		{
			name: "event_with_id_and_ack_flag",
			in:   `5:12+::{"name":"joinDoc","args":["abc"]}`,
			want: Packet{Opcode: OpEvent, ID: 12, HasID: true, AckData: true, Payload: []byte(`{"name":"joinDoc","args":["abc"]}`)},
		},
		{
			name: "event_with_id_no_flag",
			in:   `5:7::{}`,
			want: Packet{Opcode: OpEvent, ID: 7, HasID: true, Payload: []byte(`{}`)},
		},
		{
			name: "endpoint",
			in:   "1::/chat",
			want: Packet{Opcode: OpConnect, Endpoint: "/chat"},
		},
		{
			name: "empty_payload_after_separator",
			in:   "3:::",
			want: Packet{Opcode: OpMessage, Payload: []byte{}},
		},
		{
			name: "payload_containing_colons",
			in:   `4:::{"a":"b:c"}`,
			want: Packet{Opcode: OpJSON, Payload: []byte(`{"a":"b:c"}`)},
		},
		{
			name: "ack_compact",
			in:   `6:::5+["x"]`,
			want: Packet{Opcode: OpAck, ID: 5, HasID: true, AckData: true, Payload: []byte(`["x"]`)},
		},
		{
			name: "ack_separated",
			in:   `6:::5+::[null,["line1","line2"]]`,
			want: Packet{Opcode: OpAck, ID: 5, HasID: true, AckData: true, Payload: []byte(`[null,["line1","line2"]]`)},
		},
		{
			name: "ack_without_flag",
			in:   `6:::42`,
			want: Packet{Opcode: OpAck, ID: 42, HasID: true, Payload: []byte{}},
		},
		{
			name: "noop",
			in:   "8::",
			want: Packet{Opcode: OpNoop},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.in))
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", tc.in, err)
			}
			assertPacketEqual(t, got, &tc.want)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"non_digit_opcode", "x::"},
		{"opcode_nine", "9::"},
		{"opcode_only", "2"},
		{"missing_first_separator", "2x:"},
		{"missing_separator_after_seq", "5:1"},
		{"garbage_after_seq", "5:1x::"},
		{"missing_second_separator", "2:"},
		{"ack_flag_without_id", "5:+::{}"},
		{"ack_id_in_normal_position", `6:5::["x"]`},
		{"ack_flag_in_normal_position", `6:+::["x"]`},
		{"ack_without_alternate_id", `6:::["x"]`},
		{"ack_without_endpoint_separator", "6::"},
		{"ack_empty_alternate", "6:::"},
		{"seq_overflow", "5:99999999999999999999999::"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.in))
			if err == nil {
				t.Fatalf("Decode(%q) expected error", tc.in)
			}
			if !errors.Is(err, ErrFormat) {
				t.Errorf("Decode(%q) error = %v, want ErrFormat", tc.in, err)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("Decode(%q) error type = %T, want *FormatError", tc.in, err)
			}
		})
	}
}

func TestPacketRoundTrip(t *testing.T) {
	packets := []Packet{
		{Opcode: OpDisconnect},
		{Opcode: OpConnect},
		{Opcode: OpHeartbeat},
		{Opcode: OpConnect, Endpoint: "/ns"},
		{Opcode: OpMessage, Payload: []byte("hello")},
		{Opcode: OpMessage, Payload: []byte{}},
		{Opcode: OpEvent, ID: 1, HasID: true, AckData: true, Payload: []byte(`{"name":"leaveDoc","args":["d1"]}`)},
		{Opcode: OpEvent, ID: 99, HasID: true, Payload: []byte(`{"name":"x"}`)},
		{Opcode: OpError, Endpoint: "e", Payload: []byte("reason")},
		{Opcode: OpNoop},
	}

	for _, p := range packets {
		t.Run(p.Opcode.String(), func(t *testing.T) {
			encoded := p.Encode()
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", encoded, err)
			}
			assertPacketEqual(t, decoded, &p)

			again := decoded.Encode()
			if !bytes.Equal(again, encoded) {
				t.Errorf("re-encode = %q, want %q", again, encoded)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		p    Packet
		want string
	}{
		{"heartbeat", Packet{Opcode: OpHeartbeat}, "2::"},
		{"call", Packet{Opcode: OpEvent, ID: 3, HasID: true, AckData: true, Payload: []byte(`{}`)}, "5:3+::{}"},
		{"ack", Packet{Opcode: OpAck, ID: 5, HasID: true, AckData: true, Payload: []byte(`[]`)}, "6:::5+[]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(tc.p.Encode()); got != tc.want {
				t.Errorf("Encode() = %q, want %q", got, tc.want)
			}
		})
	}

	if got := string(Heartbeat); got != "2::" {
		t.Errorf("Heartbeat = %q", got)
	}
}

func TestDecodeCopiesPayload(t *testing.T) {
	buf := []byte("3:::abc")
	p, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf[4] = 'X'
	buf[5] = 'X'
	if string(p.Payload) != "abc" {
		t.Errorf("Payload = %q after mutating input", p.Payload)
	}
}

func TestOpcodeString(t *testing.T) {
	for op := OpDisconnect; op <= OpNoop; op++ {
		if op.String() == "Unknown" {
			t.Errorf("Opcode(%d).String() = Unknown", op)
		}
		if !op.Valid() {
			t.Errorf("Opcode(%d).Valid() = false", op)
		}
	}
	if Opcode(9).String() != "Unknown" || Opcode(9).Valid() {
		t.Error("Opcode(9) should be unknown and invalid")
	}
}

func assertPacketEqual(t *testing.T, got, want *Packet) {
	t.Helper()
	if got.Opcode != want.Opcode {
		t.Errorf("Opcode = %v, want %v", got.Opcode, want.Opcode)
	}
	if got.HasID != want.HasID || got.ID != want.ID {
		t.Errorf("ID = (%d, %v), want (%d, %v)", got.ID, got.HasID, want.ID, want.HasID)
	}
	if got.AckData != want.AckData {
		t.Errorf("AckData = %v, want %v", got.AckData, want.AckData)
	}
	if got.Endpoint != want.Endpoint {
		t.Errorf("Endpoint = %q, want %q", got.Endpoint, want.Endpoint)
	}
	if (got.Payload == nil) != (want.Payload == nil) {
		t.Errorf("Payload nil = %v, want %v", got.Payload == nil, want.Payload == nil)
	}
	if !bytes.Equal(got.Payload, want.Payload) {
		t.Errorf("Payload = %q, want %q", got.Payload, want.Payload)
	}
}
