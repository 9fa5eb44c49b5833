package protocol

import "strconv"

// Decoder is a forward-only cursor over a single frame.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a new decoder from the given byte slice.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF returns true if all bytes have been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// Position returns the current read position.
func (d *Decoder) Position() int {
	return d.pos
}

// Peek returns the next byte without consuming it.
func (d *Decoder) Peek() (byte, bool) {
	if d.pos >= len(d.buf) {
		return 0, false
	}
	return d.buf[d.pos], true
}

// Accept consumes the next byte if it equals c.
func (d *Decoder) Accept(c byte) bool {
	if b, ok := d.Peek(); ok && b == c {
		d.pos++
		return true
	}
	return false
}

// Expect consumes c or fails with a FormatError naming what was missing.
func (d *Decoder) Expect(c byte, what string) error {
	if !d.Accept(c) {
		return formatErrorf(d.pos, "missing %s", what)
	}
	return nil
}

// ReadDigits consumes a run of ASCII digits and parses it.
// ok is false when the run is empty.
func (d *Decoder) ReadDigits() (n uint64, ok bool, err error) {
	start := d.pos
	for d.pos < len(d.buf) && d.buf[d.pos] >= '0' && d.buf[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == start {
		return 0, false, nil
	}
	n, err = strconv.ParseUint(string(d.buf[start:d.pos]), 10, 64)
	if err != nil {
		return 0, false, &FormatError{Offset: start, Reason: "sequence id out of range", Err: err}
	}
	return n, true, nil
}

// ReadUntil consumes bytes up to (not including) the next c.
// found is false when c does not occur; the rest of the buffer is consumed.
func (d *Decoder) ReadUntil(c byte) (field []byte, found bool) {
	start := d.pos
	for d.pos < len(d.buf) {
		if d.buf[d.pos] == c {
			return d.buf[start:d.pos], true
		}
		d.pos++
	}
	return d.buf[start:], false
}

// ReadRest consumes and returns everything left.
// The returned slice references the decoder's buffer; do not modify.
func (d *Decoder) ReadRest() []byte {
	b := d.buf[d.pos:]
	d.pos = len(d.buf)
	return b
}
