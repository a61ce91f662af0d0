package slack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gobeaver/slack-dispatch/config"
)

const tracerName = "github.com/gobeaver/slack-dispatch/slack"

// Global instance management
var (
	defaultService *Service
	defaultOnce    sync.Once
	defaultErr     error
)

// Builder provides a way to create Slack service instances with custom prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Slack service using the builder's prefix
func (b *Builder) Init() error {
	cfg, err := GetConfig(config.LoadOptions{Prefix: b.prefix})
	if err != nil {
		return err
	}
	return Init(*cfg)
}

// New creates a new Slack service using the builder's prefix
func (b *Builder) New() (*Service, error) {
	cfg, err := GetConfig(config.LoadOptions{Prefix: b.prefix})
	if err != nil {
		return nil, err
	}
	return New(*cfg)
}

// Service dispatches messages. It keeps no per-invocation state and is safe
// for concurrent use.
type Service struct {
	webhookURL     string
	botToken       string
	baseURL        string
	userAgent      string
	maxMessageSize int
	httpClient     *http.Client
	logger         *Logger
	requestLogger  *RequestLogger
	metrics        *Metrics
}

// transport is one way of delivering a message.
type transport interface {
	name() string
	send(ctx context.Context, p Params) (*DispatchResult, error)
}

// Credentials are the values a single invocation resolved.
type Credentials struct {
	WebhookURL string
	BotToken   string
	BaseURL    string
}

// Init initializes the global instance with optional config
func Init(configs ...Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = &configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultService, defaultErr = New(*cfg)
	})

	return defaultErr
}

// New creates a new instance with given config
func New(cfg Config) (*Service, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := NewLogger(cfg.EnableLogging, cfg.LogLevel)
	return &Service{
		webhookURL:     cfg.WebhookURL,
		botToken:       cfg.BotToken,
		baseURL:        cfg.BaseURL,
		userAgent:      cfg.UserAgent,
		maxMessageSize: cfg.MaxMessageSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:        logger,
		requestLogger: NewRequestLogger(logger, cfg.RedactLogs),
		metrics:       NewMetrics(),
	}, nil
}

// validateConfig checks configuration validity. Credentials are optional
// here: a webhook may still arrive with each invocation.
func validateConfig(cfg Config) error {
	if err := validateURL(cfg.BaseURL); err != nil {
		return fmt.Errorf("%w: base URL %v", ErrInvalidConfig, err)
	}

	if cfg.WebhookURL != "" {
		if err := validateURL(cfg.WebhookURL); err != nil {
			return fmt.Errorf("%w: webhook URL %v", ErrInvalidConfig, err)
		}
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", ErrInvalidConfig)
	}

	if cfg.MaxMessageSize < 0 {
		return fmt.Errorf("%w: max message size cannot be negative", ErrInvalidConfig)
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q must be an absolute http(s) URL", RedactSensitive(raw))
	}
	return nil
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultService = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}

// Slack returns the global slack service instance
func Slack() *Service {
	if defaultService == nil {
		Init() // Initialize with defaults if needed
	}
	return defaultService
}

// Health reports whether the global service can deliver messages
func Health() error {
	if defaultService == nil {
		return ErrNotInitialized
	}
	return defaultService.Health(context.Background())
}

// Health reports whether a webhook or a bot token is configured. It never
// sends a message, since every send creates a new message in Slack.
func (s *Service) Health(ctx context.Context) error {
	if _, err := s.selectTransport(s.resolveCredentials(Params{})); err != nil {
		return err
	}
	return ctx.Err()
}

// SetLogger replaces the service logger
func (s *Service) SetLogger(logger *Logger) *Service {
	s.logger = logger
	s.requestLogger = NewRequestLogger(logger, s.requestLogger.redact)
	return s
}

// SetHTTPClient replaces the HTTP client used for every request
func (s *Service) SetHTTPClient(client *http.Client) *Service {
	s.httpClient = client
	return s
}

// Stats returns the dispatch counters collected so far
func (s *Service) Stats() Stats {
	return s.metrics.GetStats()
}

// Run parses input, dispatches it and reports the outcome. It never returns
// an error or panics: every failure becomes a failed Result.
func (s *Service) Run(ctx context.Context, input any) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("slack dispatch panicked", "panic", r)
			result = Failure(fmt.Errorf("internal error: %v", r))
		}
	}()

	p, err := ParseParams(input)
	if err != nil {
		s.metrics.RecordDispatch()
		s.metrics.RecordFailure(ctx, err)
		s.logger.Warn("slack parameters rejected", "kind", ErrorKind(err), "error", err)
		return Failure(err)
	}
	return Report(s.Dispatch(ctx, p))
}

// Dispatch validates p, selects a transport and performs exactly one HTTP call.
func (s *Service) Dispatch(ctx context.Context, p Params) (*DispatchResult, error) {
	start := time.Now()
	invocationID := uuid.NewString()
	logger := s.logger.With("invocation_id", invocationID)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "slack.dispatch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("slack.invocation_id", invocationID),
			attribute.String("slack.channel", p.Channel),
			attribute.Bool("slack.thread_reply", p.ThreadTS != ""),
		),
	)
	defer span.End()

	s.metrics.RecordDispatch()

	res, err := s.dispatch(ctx, p, span)
	if err != nil {
		kind := ErrorKind(err)
		s.metrics.RecordFailure(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		logger.Warn("slack dispatch failed", "kind", kind, "error", RedactSensitive(err.Error()))
		return nil, err
	}

	latency := time.Since(start)
	s.metrics.RecordSuccess(ctx, res.Transport, latency)
	span.SetStatus(codes.Ok, "")
	logger.Info("slack message sent",
		"transport", res.Transport,
		"channel", res.Channel,
		"message_id", res.MessageID,
		"latency", latency,
	)
	return res, nil
}

func (s *Service) dispatch(ctx context.Context, p Params, span trace.Span) (*DispatchResult, error) {
	creds := s.resolveCredentials(p)

	if err := p.Validate(creds.WebhookURL != ""); err != nil {
		return nil, err
	}
	if s.maxMessageSize > 0 && utf8.RuneCountInString(p.Text) > s.maxMessageSize {
		return nil, fmt.Errorf("%w: message text exceeds %d characters", ErrValidation, s.maxMessageSize)
	}

	t, err := s.selectTransport(creds)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("slack.transport", t.name()))

	return t.send(ctx, p)
}

// resolveCredentials applies the explicit webhook parameter over the
// configured values.
func (s *Service) resolveCredentials(p Params) Credentials {
	creds := Credentials{
		WebhookURL: s.webhookURL,
		BotToken:   s.botToken,
		BaseURL:    s.baseURL,
	}
	if p.Webhook != "" {
		creds.WebhookURL = p.Webhook
	}
	return creds
}

// selectTransport prefers a webhook and falls back to the bot token.
func (s *Service) selectTransport(creds Credentials) (transport, error) {
	switch {
	case creds.WebhookURL != "":
		return &webhookSender{svc: s, url: creds.WebhookURL}, nil
	case creds.BotToken != "":
		return newAPISender(s, creds.BotToken, creds.BaseURL), nil
	default:
		return nil, fmt.Errorf("%w: set SLACK_WEBHOOK_URL or SLACK_BOT_TOKEN", ErrConfiguration)
	}
}

// doRequest performs one JSON POST and returns the status and full body.
func (s *Service) doRequest(ctx context.Context, endpoint string, payload []byte, header http.Header) (int, []byte, error) {
	s.requestLogger.LogRequest(ctx, endpoint, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the endpoint, which may embed a webhook secret
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return 0, nil, urlErr.Err
		}
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	s.requestLogger.LogResponse(ctx, resp.StatusCode, body)
	return resp.StatusCode, body, nil
}
