package session

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leafwire/leafwire/pkg/telemetry"
)

// Config holds configuration for a session.
type Config struct {
	// Timeouts

	// RPCTimeout bounds how long a call waits for its ACK.
	// Default: 3 seconds.
	RPCTimeout time.Duration

	// ShutdownGrace is how long Leave lets the receive loop run after the
	// close frame was sent, so the server's close reply is read normally.
	// Default: 100 milliseconds.
	ShutdownGrace time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HandshakeTimeout bounds the HTTP handshake and the WebSocket upgrade.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// Limits

	// MaxMessageSize is the maximum size of an incoming message. Project
	// snapshots and large documents arrive as single messages.
	// Default: 16MB.
	MaxMessageSize int64

	// Behaviour

	// IgnoreEvents lists extra event names that are accepted and dropped.
	// Any other unexpected event ends the session.
	// Default: none.
	IgnoreEvents []string

	// Collaborators

	// Logger receives session logs.
	// Default: slog.Default().
	Logger *slog.Logger

	// Metrics records session metrics. Nil disables metrics.
	Metrics *telemetry.Metrics

	// Tracer starts spans for connect and calls.
	// Default: a tracer from the global provider.
	Tracer *telemetry.Tracer

	// Dialer is used for the WebSocket upgrade. Its Jar is replaced by the
	// HTTP client's jar when the dialer has none.
	// Default: a copy of websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RPCTimeout:       3 * time.Second,
		ShutdownGrace:    100 * time.Millisecond,
		WriteTimeout:     10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   16 << 20,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.IgnoreEvents = append([]string(nil), c.IgnoreEvents...)
	return &clone
}

// withDefaults returns a copy with every zero field set to its default.
func (c *Config) withDefaults() *Config {
	out := c.Clone()
	if out == nil {
		out = DefaultConfig()
	}
	def := DefaultConfig()
	if out.RPCTimeout <= 0 {
		out.RPCTimeout = def.RPCTimeout
	}
	if out.ShutdownGrace <= 0 {
		out.ShutdownGrace = def.ShutdownGrace
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = def.WriteTimeout
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = def.HandshakeTimeout
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = def.MaxMessageSize
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Tracer == nil {
		out.Tracer = telemetry.NewTracer()
	}
	return out
}
