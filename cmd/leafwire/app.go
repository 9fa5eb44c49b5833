package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"

	"github.com/leafwire/leafwire/internal/config"
	"github.com/leafwire/leafwire/internal/errors"
	"github.com/leafwire/leafwire/pkg/session"
	"github.com/leafwire/leafwire/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/publicsuffix"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath  string
	server      string
	cookie      string
	logLevel    string
	logFormat   string
	metricsAddr string
}

// app is what a command needs once flags and config are resolved.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer
}

// loadConfig resolves the configuration: file, then environment, then flags.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case o.configPath != "":
		cfg, err = config.LoadFile(o.configPath)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
		cfg.ApplyEnv()
	}
	if err != nil {
		return nil, err
	}

	if o.server != "" {
		cfg.Server = o.server
	}
	if o.cookie != "" {
		cfg.Cookie = o.cookie
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Address = o.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the shared command state. Logs go to stderr.
func (o *globalOptions) newApp() (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  telemetry.NewMetrics(telemetry.WithRegistry(reg)),
		tracer:   telemetry.NewTracer(),
	}, nil
}

// newLogger builds the slog handler selected by the log section.
func newLogger(lc config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// newHTTPClient returns a client whose jar holds the session cookie for
// server. The same jar authenticates the WebSocket upgrade.
func newHTTPClient(server *url.URL, cookie string) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	cookies, err := http.ParseCookie(cookie)
	if err != nil {
		return nil, errors.New("E104").
			WithDetail("The cookie must look like \"name=value; name2=value2\".").
			Wrap(err)
	}
	jar.SetCookies(server, cookies)
	return &http.Client{Jar: jar}, nil
}

// connect opens a session on projectID and waits for the project snapshot.
func (a *app) connect(ctx context.Context, projectID string) (*session.Session, *session.ProjectInfo, error) {
	if err := a.cfg.ValidateSession(); err != nil {
		return nil, nil, err
	}
	server, err := a.cfg.ServerURL()
	if err != nil {
		return nil, nil, err
	}
	client, err := newHTTPClient(server, a.cfg.Cookie)
	if err != nil {
		return nil, nil, err
	}
	scfg, err := a.cfg.SessionConfig()
	if err != nil {
		return nil, nil, err
	}
	scfg.Logger = a.logger
	scfg.Metrics = a.metrics
	scfg.Tracer = a.tracer

	s, err := session.Connect(ctx, client, server, projectID, scfg)
	if err != nil {
		return nil, nil, err
	}

	infoCtx, cancel := context.WithTimeout(ctx, scfg.HandshakeTimeout)
	defer cancel()
	info, err := s.GetProjectInfo(infoCtx)
	if err != nil {
		if lerr := s.Leave(); lerr != nil {
			a.logger.Debug("leave after failed join", "error", lerr)
			// The loop failure explains the missing snapshot better.
			return nil, nil, lerr
		}
		return nil, nil, err
	}
	return s, info, nil
}

// run executes fn with the metrics endpoint served alongside when
// configured.
func (a *app) run(ctx context.Context, fn func(context.Context) error) error {
	if a.cfg.Metrics.Address == "" {
		return fn(ctx)
	}

	srv, err := startMetricsServer(a.cfg.Metrics.Address, a.registry, a.logger)
	if err != nil {
		return err
	}
	defer srv.stop()

	return fn(ctx)
}
