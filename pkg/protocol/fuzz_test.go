package protocol

import (
	"bytes"
	"testing"
	"unicode/utf8"
)

// FuzzDecode tests that decoding arbitrary bytes doesn't panic and that any
// non-ACK packet that decodes re-encodes to the same bytes.
func FuzzDecode(f *testing.F) {
	f.Add([]byte("2::"))
	f.Add([]byte("1::"))
	f.Add([]byte(`5:1+::{"name":"joinDoc","args":["abc"]}`))
	f.Add([]byte(`6:::5+::[null,["line1","line2"]]`))
	f.Add([]byte(`6:::1+[]`))
	f.Add([]byte("0::/endpoint"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		p, err := Decode(data)
		if err != nil || p.Opcode == OpAck {
			return
		}
		if got := p.Encode(); !bytes.Equal(got, data) {
			// Leading zeros in the id are the only lossy case.
			again, err := Decode(got)
			if err != nil {
				t.Fatalf("re-decode of %q failed: %v", got, err)
			}
			if again.ID != p.ID || !bytes.Equal(again.Payload, p.Payload) || again.Endpoint != p.Endpoint {
				t.Fatalf("round trip mismatch: %q -> %q", data, got)
			}
		}
	})
}

// FuzzDecodeEvent tests that decoding arbitrary payloads doesn't panic.
func FuzzDecodeEvent(f *testing.F) {
	f.Add([]byte(`{"name":"joinProjectResponse","args":[{}]}`))
	f.Add([]byte(`{"name":"x"}`))
	f.Add([]byte(`{}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		ev, err := DecodeEvent(data)
		if err == nil && ev.Args == nil {
			t.Fatal("Args must be non-nil on success")
		}
	})
}

// FuzzUnmangle checks the inverse property on valid UTF-8 input.
func FuzzUnmangle(f *testing.F) {
	f.Add("hello")
	f.Add("naïve café")
	f.Add("🎉")

	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			return
		}
		if got := Unmangle(Mangle(s)); got != s {
			t.Fatalf("Unmangle(Mangle(%q)) = %q", s, got)
		}
	})
}
