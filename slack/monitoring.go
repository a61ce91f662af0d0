package slack

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics tracks dispatch counters for a Service and mirrors them to the
// global OpenTelemetry meter provider. All methods are safe for concurrent use.
type Metrics struct {
	dispatches   atomic.Int64
	succeeded    atomic.Int64
	failed       atomic.Int64
	viaWebhook   atomic.Int64
	viaAPI       atomic.Int64
	totalLatency atomic.Int64
	requestCount atomic.Int64
	mu           sync.RWMutex
	errorCounts  map[string]int64

	dispatchCounter metric.Int64Counter
	latency         metric.Float64Histogram
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	m := &Metrics{
		errorCounts: make(map[string]int64),
	}

	meter := otel.Meter(tracerName)
	var err error
	m.dispatchCounter, err = meter.Int64Counter(
		"slack.dispatches",
		metric.WithDescription("Slack dispatch attempts by outcome"),
	)
	if err != nil {
		m.dispatchCounter = nil
	}
	m.latency, err = meter.Float64Histogram(
		"slack.dispatch.duration",
		metric.WithDescription("Time spent delivering accepted messages"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.latency = nil
	}
	return m
}

// RecordDispatch records a dispatch attempt
func (m *Metrics) RecordDispatch() {
	m.dispatches.Add(1)
}

// RecordSuccess records a message accepted by Slack
func (m *Metrics) RecordSuccess(ctx context.Context, transport string, latency time.Duration) {
	m.succeeded.Add(1)
	m.totalLatency.Add(int64(latency))
	m.requestCount.Add(1)

	switch transport {
	case TransportWebhook:
		m.viaWebhook.Add(1)
	case TransportAPI:
		m.viaAPI.Add(1)
	}

	attrs := metric.WithAttributes(
		attribute.String("outcome", "success"),
		attribute.String("transport", transport),
	)
	if m.dispatchCounter != nil {
		m.dispatchCounter.Add(ctx, 1, attrs)
	}
	if m.latency != nil {
		m.latency.Record(ctx, float64(latency)/float64(time.Millisecond), attrs)
	}
}

// RecordFailure records a failed dispatch under its error kind
func (m *Metrics) RecordFailure(ctx context.Context, err error) {
	m.failed.Add(1)
	kind := ErrorKind(err)

	if m.dispatchCounter != nil {
		m.dispatchCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", "failure"),
			attribute.String("error.kind", kind),
		))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCounts[kind]++
}

// GetStats returns current statistics
func (m *Metrics) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	avgLatency := int64(0)
	if count := m.requestCount.Load(); count > 0 {
		avgLatency = m.totalLatency.Load() / count
	}

	errorCounts := make(map[string]int64, len(m.errorCounts))
	for k, v := range m.errorCounts {
		errorCounts[k] = v
	}

	return Stats{
		Dispatches:     m.dispatches.Load(),
		Succeeded:      m.succeeded.Load(),
		Failed:         m.failed.Load(),
		ViaWebhook:     m.viaWebhook.Load(),
		ViaAPI:         m.viaAPI.Load(),
		AverageLatency: time.Duration(avgLatency),
		ErrorCounts:    errorCounts,
	}
}

// Stats represents service statistics
type Stats struct {
	Dispatches     int64
	Succeeded      int64
	Failed         int64
	ViaWebhook     int64
	ViaAPI         int64
	AverageLatency time.Duration
	ErrorCounts    map[string]int64 // keyed by ErrorKind
}

// Logger provides structured logging for the Slack service. A disabled
// logger discards everything.
type Logger struct {
	slog    *slog.Logger
	enabled bool
}

// NewLogger creates a logger writing text records to stderr. Stdout is
// left alone because the command line tool prints its result there.
func NewLogger(enabled bool, level string) *Logger {
	return NewLoggerTo(os.Stderr, enabled, level)
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, enabled bool, level string) *Logger {
	if !enabled {
		w = io.Discard
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)})
	return &Logger{
		slog:    slog.New(handler).With("component", "slack"),
		enabled: enabled,
	}
}

// parseLogLevel parses string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger carrying the given attributes on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), enabled: l.enabled}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// RequestLogger logs requests with sensitive data redaction
type RequestLogger struct {
	logger *Logger
	redact bool
}

// NewRequestLogger creates a new request logger
func NewRequestLogger(logger *Logger, redact bool) *RequestLogger {
	return &RequestLogger{
		logger: logger,
		redact: redact,
	}
}

// LogRequest logs an outgoing request
func (rl *RequestLogger) LogRequest(ctx context.Context, url string, payload []byte) {
	if !rl.logger.enabled {
		return
	}
	body := string(payload)
	if rl.redact {
		url = RedactSensitive(url)
		body = RedactSensitive(body)
	}
	rl.logger.slog.DebugContext(ctx, "sending request", "url", url, "payload", body)
}

// LogResponse logs an incoming response
func (rl *RequestLogger) LogResponse(ctx context.Context, statusCode int, body []byte) {
	if !rl.logger.enabled {
		return
	}
	s := string(body)
	if rl.redact {
		s = RedactSensitive(s)
	}
	rl.logger.slog.DebugContext(ctx, "received response", "status", statusCode, "body", s)
}

var redactions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`hooks\.slack\.com/(services|workflows|triggers)/[^\s"']+`), "hooks.slack.com/$1/REDACTED"},
	{regexp.MustCompile(`(?i)bearer\s+[^\s"']+`), "Bearer REDACTED"},
	{regexp.MustCompile(`xox[abposre]-[A-Za-z0-9-]+`), "xox?-REDACTED"},
	{regexp.MustCompile(`"(token|password|secret|api_key)"\s*:\s*"[^"]*"`), `"$1":"REDACTED"`},
}

// RedactSensitive masks webhook secrets, bearer credentials and Slack tokens in s.
func RedactSensitive(s string) string {
	for _, r := range redactions {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}
