package export

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/leafwire/leafwire/pkg/session"
	"github.com/leafwire/leafwire/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

// DocumentSource fetches document text. *session.Session implements it.
type DocumentSource interface {
	GetDocumentLines(ctx context.Context, docID string) ([]string, error)
}

// Result counts what an export did.
type Result struct {
	Written   int
	Unchanged int
	Failed    int
}

// Total returns the number of documents handled.
func (r Result) Total() int {
	return r.Written + r.Unchanged + r.Failed
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithConcurrency bounds the number of documents fetched at once.
// Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(e *Exporter) {
		e.concurrency = max(n, 1)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// WithMetrics records one exported_documents_total sample per document.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// Exporter copies documents from a source to a sink.
type Exporter struct {
	source      DocumentSource
	sink        Sink
	concurrency int
	logger      *slog.Logger
	metrics     *telemetry.Metrics
}

// New creates an Exporter. The default concurrency is 4.
func New(source DocumentSource, sink Sink, opts ...Option) *Exporter {
	e := &Exporter{
		source:      source,
		sink:        sink,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run exports docs. A document that fails does not stop the others; the
// failures are returned joined, each as a *DocumentError. A failure that
// makes the sink unusable, or the session closing, stops the export early.
func (e *Exporter) Run(ctx context.Context, docs []session.DocEntry) (Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	var (
		written, unchanged atomic.Int64
		mu                 sync.Mutex
		failures           []error
	)

	for _, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		doc := doc
		g.Go(func() error {
			ok, err := e.exportOne(gctx, doc)
			switch {
			case err != nil:
				e.metrics.DocumentExported("failed")
				derr := &DocumentError{Path: doc.Path, DocID: doc.ID, Err: err}
				mu.Lock()
				failures = append(failures, derr)
				mu.Unlock()
				e.logger.Warn("document export failed", "path", doc.Path, "doc_id", doc.ID, "error", err)
				if fatal(err) {
					return derr
				}
			case ok:
				written.Add(1)
				e.metrics.DocumentExported("written")
				e.logger.Debug("document written", "path", doc.Path)
			default:
				unchanged.Add(1)
				e.metrics.DocumentExported("unchanged")
			}
			return nil
		})
	}
	_ = g.Wait() // the fatal error is also in failures

	res := Result{
		Written:   int(written.Load()),
		Unchanged: int(unchanged.Load()),
		Failed:    len(failures),
	}
	e.logger.Info("export finished",
		"written", res.Written,
		"unchanged", res.Unchanged,
		"failed", res.Failed,
		"skipped", len(docs)-res.Total())

	if len(failures) == 0 && ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, errors.Join(failures...)
}

func (e *Exporter) exportOne(ctx context.Context, doc session.DocEntry) (bool, error) {
	lines, err := e.source.GetDocumentLines(ctx, doc.ID)
	if err != nil {
		return false, err
	}
	return e.sink.Put(ctx, doc.Path, []byte(Join(lines)))
}

// fatal reports whether err means no further document can succeed.
func fatal(err error) bool {
	return errors.Is(err, ErrDestination) ||
		errors.Is(err, session.ErrSessionClosed) ||
		errors.Is(err, session.ErrProtocolViolation) ||
		errors.Is(err, session.ErrConnection)
}

// Join renders document lines as file content: lines separated by "\n",
// with a trailing newline when there is at least one line.
func Join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
