// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for leafwire sessions.
//
// # Prometheus Metrics
//
// Metrics are registered on the registry given with WithRegistry (the
// default registerer otherwise):
//
//	m := telemetry.NewMetrics(
//	    telemetry.WithNamespace("leafwire"),
//	    telemetry.WithRegistry(reg),
//	)
//
// Collected series:
//   - leafwire_sessions_active: Gauge of open sessions
//   - leafwire_frames_sent_total: Counter of frames written, by opcode
//   - leafwire_frames_received_total: Counter of frames read, by opcode
//   - leafwire_decode_errors_total: Counter of frames skipped as malformed
//   - leafwire_heartbeats_total: Counter of heartbeats echoed
//   - leafwire_calls_total: Counter of remote calls, by method and outcome
//   - leafwire_call_duration_seconds: Histogram of remote call latency
//   - leafwire_exported_documents_total: Counter of exported documents, by result
//
// A nil *Metrics is valid and records nothing.
//
// # OpenTelemetry
//
// Tracer wraps a tracer from the global provider. Configure the provider in
// main before connecting:
//
//	otel.SetTracerProvider(tp)
//	tracer := telemetry.NewTracer(telemetry.WithTracerName("my-tool"))
package telemetry
