package config

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leafwire/leafwire/internal/errors"
	"github.com/leafwire/leafwire/pkg/session"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "leafwire.json"

	// EnvCookie overrides the cookie stored in the file.
	EnvCookie = "LEAFWIRE_COOKIE"

	// DefaultExportDir is the default export directory.
	DefaultExportDir = "export"

	// DefaultExportConcurrency is the default number of documents fetched
	// at once during export.
	DefaultExportConcurrency = 4
)

// Config represents the complete leafwire.json configuration.
type Config struct {
	// Server is the base URL of the collaboration server.
	Server string `json:"server,omitempty"`

	// Cookie is the Cookie header of an authenticated browser session.
	Cookie string `json:"cookie,omitempty"`

	// Session contains protocol session tuning.
	Session SessionConfig `json:"session"`

	// Metrics contains the Prometheus endpoint configuration.
	Metrics MetricsConfig `json:"metrics"`

	// Export contains export destinations.
	Export ExportConfig `json:"export"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SessionConfig contains session configuration. Durations use
// time.ParseDuration syntax (e.g., "3s").
type SessionConfig struct {
	RPCTimeout       string   `json:"rpcTimeout,omitempty"`
	ShutdownGrace    string   `json:"shutdownGrace,omitempty"`
	WriteTimeout     string   `json:"writeTimeout,omitempty"`
	HandshakeTimeout string   `json:"handshakeTimeout,omitempty"`
	MaxMessageSize   int64    `json:"maxMessageSize,omitempty"`
	IgnoreEvents     []string `json:"ignoreEvents,omitempty"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Address is where /metrics is served. Empty disables the endpoint.
	Address string `json:"address,omitempty"`
}

// ExportConfig contains export configuration.
type ExportConfig struct {
	// Dir is the local export directory.
	Dir string `json:"dir,omitempty"`

	// Concurrency bounds parallel document fetches.
	Concurrency int `json:"concurrency,omitempty"`

	// S3 selects a bucket instead of Dir when Bucket is set.
	S3 S3Config `json:"s3"`
}

// S3Config contains the S3 export destination.
type S3Config struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	def := session.DefaultConfig()
	return &Config{
		Session: SessionConfig{
			RPCTimeout:       def.RPCTimeout.String(),
			ShutdownGrace:    def.ShutdownGrace.String(),
			WriteTimeout:     def.WriteTimeout.String(),
			HandshakeTimeout: def.HandshakeTimeout.String(),
			MaxMessageSize:   def.MaxMessageSize,
		},
		Export: ExportConfig{
			Dir:         DefaultExportDir,
			Concurrency: DefaultExportConcurrency,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for leafwire.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No " + ConfigFileName + " found at " + path).
				Wrap(err)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse " + path + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.ApplyEnv()

	return cfg, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path. The file holds a
// session cookie, so it is only readable by the owner.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.New("E101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvCookie); v != "" {
		c.Cookie = v
	}
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	def := New()

	if c.Session.RPCTimeout == "" {
		c.Session.RPCTimeout = def.Session.RPCTimeout
	}
	if c.Session.ShutdownGrace == "" {
		c.Session.ShutdownGrace = def.Session.ShutdownGrace
	}
	if c.Session.WriteTimeout == "" {
		c.Session.WriteTimeout = def.Session.WriteTimeout
	}
	if c.Session.HandshakeTimeout == "" {
		c.Session.HandshakeTimeout = def.Session.HandshakeTimeout
	}
	if c.Session.MaxMessageSize == 0 {
		c.Session.MaxMessageSize = def.Session.MaxMessageSize
	}

	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}
	if c.Export.Concurrency == 0 {
		c.Export.Concurrency = DefaultExportConcurrency
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks the settings every command needs: log and export
// settings and well-formed durations. ValidateSession additionally checks
// what is needed to connect.
func (c *Config) Validate() error {
	if _, err := c.SessionConfig(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E104").
			WithDetailf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Export.Concurrency < 1 {
		return errors.New("E104").
			WithDetailf("export.concurrency must be at least 1, got %d", c.Export.Concurrency)
	}
	return nil
}

// ValidateSession checks that a session can be opened.
func (c *Config) ValidateSession() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := c.ServerURL(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Cookie) == "" {
		return errors.New("E103")
	}
	return nil
}

// ServerURL parses Server.
func (c *Config) ServerURL() (*url.URL, error) {
	if c.Server == "" {
		return nil, errors.New("E102")
	}
	u, err := url.Parse(c.Server)
	if err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New("E102").WithDetailf("%q is not an absolute http or https URL.", c.Server)
	}
	return u, nil
}

// SessionConfig converts the session section to a session.Config. Logger,
// metrics and tracer are left for the caller.
func (c *Config) SessionConfig() (*session.Config, error) {
	out := session.DefaultConfig()

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"session.rpcTimeout", c.Session.RPCTimeout, &out.RPCTimeout},
		{"session.shutdownGrace", c.Session.ShutdownGrace, &out.ShutdownGrace},
		{"session.writeTimeout", c.Session.WriteTimeout, &out.WriteTimeout},
		{"session.handshakeTimeout", c.Session.HandshakeTimeout, &out.HandshakeTimeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil || v <= 0 {
			return nil, errors.New("E104").
				WithDetailf("%s must be a positive duration such as \"3s\", got %q", d.name, d.value)
		}
		*d.dst = v
	}

	if c.Session.MaxMessageSize < 0 {
		return nil, errors.New("E104").
			WithDetailf("session.maxMessageSize must not be negative, got %d", c.Session.MaxMessageSize)
	}
	if c.Session.MaxMessageSize > 0 {
		out.MaxMessageSize = c.Session.MaxMessageSize
	}
	out.IgnoreEvents = append([]string(nil), c.Session.IgnoreEvents...)
	return out, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, errors.New("E104").
			WithDetailf("log.level must be debug, info, warn or error, got %q", name)
	}
	return l, nil
}
