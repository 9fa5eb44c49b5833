package errors

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/leafwire/leafwire/pkg/export"
	"github.com/leafwire/leafwire/pkg/session"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", "E103", "Session cookie missing", CategoryConfig},
		{"connection error", "E201", "Server refused the session", CategoryConnection},
		{"protocol error", "E302", "Request timed out", CategoryProtocol},
		{"unknown error code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestRegistryCodes(t *testing.T) {
	prefixes := map[Category]string{
		CategoryConfig:     "E1",
		CategoryConnection: "E2",
		CategoryProtocol:   "E3",
		CategoryRemote:     "E4",
		CategoryExport:     "E5",
	}
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) missing", code)
		}
		if !strings.HasPrefix(code, prefixes[tmpl.Category]) {
			t.Errorf("code %s is in the wrong range for category %s", code, tmpl.Category)
		}
		if tmpl.Message == "" {
			t.Errorf("code %s has no message", code)
		}
	}
}

func TestCodedError_Error(t *testing.T) {
	err := New("E302")
	if got, want := err.Error(), "E302: Request timed out"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Wrap(io.EOF)
	if got, want := err.Error(), "E302: Request timed out: EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, io.EOF) {
		t.Error("errors.Is through CodedError failed")
	}

	plain := &CodedError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E201").WithDetail("The handshake was rejected with HTTP 403.").Wrap(io.EOF)
	out := err.Format()

	for _, want := range []string{
		"ERROR E201: Server refused the session",
		"The handshake was rejected with HTTP 403.",
		"Cause: EOF",
		"Hint: Copy a fresh session cookie",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains escape codes with colors disabled")
	}
}

func TestFormatColors(t *testing.T) {
	EnableColors()
	if out := New("E301").Format(); !strings.Contains(out, colorRed) {
		t.Error("Format() without colors while enabled")
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E502").Wrap(io.ErrShortWrite)
	var got map[string]string
	if e := json.Unmarshal([]byte(err.FormatJSON()), &got); e != nil {
		t.Fatalf("FormatJSON is not JSON: %v", e)
	}
	if got["code"] != "E502" || got["category"] != "export" || got["cause"] != "short write" {
		t.Errorf("FormatJSON = %v", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("aaa bbb ccc ddd", 7)
	want := []string{"aaa bbb", "ccc ddd"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText of empty text should be nil")
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b bytes.Buffer
	Fprint(&b, fmt.Errorf("outer: %w", New("E102")))
	if !strings.Contains(b.String(), "ERROR E102") {
		t.Errorf("Fprint = %q", b.String())
	}

	b.Reset()
	Fprint(&b, io.EOF)
	if !strings.Contains(b.String(), "ERROR: EOF") {
		t.Errorf("Fprint = %q", b.String())
	}
}

func TestFromSession(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"forbidden handshake", &session.ConnectionError{Op: "handshake", StatusCode: 403}, "E201"},
		{"unauthorized upgrade", &session.ConnectionError{Op: "dial", StatusCode: 401}, "E201"},
		{"unreachable", &session.ConnectionError{Op: "handshake", Err: io.EOF}, "E202"},
		{"upgrade failed", &session.ConnectionError{Op: "dial", StatusCode: 400}, "E203"},
		{"read failed", &session.ConnectionError{Op: "read", Err: io.EOF}, "E204"},
		{"protocol", &session.ProtocolError{Op: "event", Message: "unhandled"}, "E301"},
		{"timeout", fmt.Errorf("%w: joinDoc", session.ErrCallTimeout), "E302"},
		{"closed", session.ErrSessionClosed, "E303"},
		{"remote", &session.RemoteError{Method: "joinDoc", DocID: "d1"}, "E401"},
		{"document", &export.DocumentError{Path: "main.tex", Err: session.ErrCallTimeout}, "E501"},
		{"destination", fmt.Errorf("%w: read-only", export.ErrDestination), "E502"},
		{"joined", stderrors.Join(io.EOF, &session.ProtocolError{Op: "x"}), "E301"},
		{"coded", New("E104"), "E104"},
		{"other", io.ErrUnexpectedEOF, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromSession(tt.err)
			if got == nil {
				t.Fatal("FromSession returned nil")
			}
			if got.Code != tt.code {
				t.Errorf("Code = %q, want %q (%v)", got.Code, tt.code, got)
			}
		})
	}

	if FromSession(nil) != nil {
		t.Error("FromSession(nil) != nil")
	}
	if got := FromSession(context.Canceled); got.Message != "Interrupted" {
		t.Errorf("FromSession(Canceled) = %v", got)
	}
}

func TestFromSessionRemoteDetail(t *testing.T) {
	err := FromSession(&session.RemoteError{Method: "joinDoc", DocID: "d1", Descriptor: json.RawMessage(`"not found"`)})
	if err.Detail != "joinDoc d1: not found" {
		t.Errorf("Detail = %q", err.Detail)
	}
}
