package protocol

import (
	"strings"
	"unicode/utf8"
)

// Unmangle reverses the escaping the server applies to document lines.
//
// The server sends the UTF-8 bytes of each line as if every byte were a
// separate Latin-1 character. The browser undoes this with
// decodeURIComponent(escape(line)): escape turns every character outside
// [A-Za-z0-9@*_+-./] into %XX, or %uXXXX above 255, and the percent-decode
// turns the %XX runs back into UTF-8. Composed, characters up to 255 become
// the byte of the same value and everything else is left alone, which is
// what this function does directly.
//
// Characters above 255 are kept as they are. If the resulting bytes are not
// valid UTF-8 the line was not mangled in the first place and is returned
// unchanged.
func Unmangle(line string) string {
	if isASCII(line) {
		return line
	}
	buf := make([]byte, 0, len(line))
	for _, r := range line {
		if r < 0x100 {
			buf = append(buf, byte(r))
		} else {
			buf = utf8.AppendRune(buf, r)
		}
	}
	if !utf8.Valid(buf) {
		return line
	}
	return string(buf)
}

// UnmangleLines applies Unmangle to each line in place and returns the slice.
func UnmangleLines(lines []string) []string {
	for i, l := range lines {
		lines[i] = Unmangle(l)
	}
	return lines
}

// Mangle is the server-side transform: each byte of s becomes the character
// with the same code point.
func Mangle(s string) string {
	if isASCII(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
