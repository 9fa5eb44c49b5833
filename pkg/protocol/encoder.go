package protocol

import "strconv"

// Encoder builds a text frame.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with the given initial capacity.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteByte appends a single byte. It never fails.
func (e *Encoder) WriteByte(b byte) error {
	e.buf = append(e.buf, b)
	return nil
}

// WriteString appends s.
func (e *Encoder) WriteString(s string) {
	e.buf = append(e.buf, s...)
}

// WriteBytes appends b.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteUint appends n in decimal.
func (e *Encoder) WriteUint(n uint64) {
	e.buf = strconv.AppendUint(e.buf, n, 10)
}
