package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/telemetry"
)

// maxResponseSize caps how much of a provider response is read (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxErrorBody is how much of an error body is kept in StatusError
const maxErrorBody = 512

// ClientConfig configures a provider Client
type ClientConfig struct {
	Provider integration.Provider
	BaseURL  string
	Timeout  time.Duration

	// MaxRetries bounds retries of network errors and 5xx responses
	MaxRetries int
	RetryDelay time.Duration

	// MaxRateLimitRetries bounds retries of 429 responses; attempt n waits
	// n*RateLimitDelay unless the response carries Retry-After.
	MaxRateLimitRetries int
	RateLimitDelay      time.Duration

	// RequestsPerSecond paces outgoing calls; zero disables pacing
	RequestsPerSecond float64

	// StaticToken is sent when no TokenSource is configured
	StaticToken string
	// TokenHeader defaults to Authorization with a Bearer prefix
	TokenHeader string
}

func (c *ClientConfig) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	if c.MaxRateLimitRetries == 0 {
		c.MaxRateLimitRetries = 3
	}
	if c.RateLimitDelay == 0 {
		c.RateLimitDelay = 2 * time.Second
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Request is one provider call. Path is joined to BaseURL unless it is an
// absolute http(s) URL.
type Request struct {
	TenantID uuid.UUID
	Method   string
	Path     string
	Query    url.Values
	Header   http.Header
	// Body is sent as-is when it is []byte, JSON-encoded otherwise
	Body any
}

// Response is a successful (2xx) provider response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError is returned for a non-2xx response that was not retried away
type StatusError struct {
	Provider   integration.Provider
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Unwrap maps the status to the integration error taxonomy
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return integration.ErrPlatformAuthFailed
	case e.StatusCode == http.StatusTooManyRequests:
		return integration.ErrPlatformRateLimited
	case e.StatusCode >= 500:
		return integration.ErrPlatformUnavailable
	default:
		return integration.ErrPlatformRequestFailed
	}
}

// IsNotFound reports whether err is a provider 404
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client performs provider calls with auth, pacing, retries and tracing
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	tokens     integration.TokenSource
	limiter    *rate.Limiter
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTokenSource authenticates calls with per-tenant OAuth tokens
func WithTokenSource(src integration.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = src
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSleep replaces the backoff sleep, mainly for tests
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) {
		c.sleep = fn
	}
}

// NewClient creates a provider client
func NewClient(cfg ClientConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	cfg.applyDefaults()
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named(cfg.Provider.String()),
		sleep:      sleepCtx,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider this client talks to
func (c *Client) Provider() integration.Provider {
	return c.cfg.Provider
}

// Do sends req, retrying as configured:
//   - 401 forces one token refresh and retries;
//   - 429 backs off linearly, honouring Retry-After;
//   - network errors and 5xx retry after RetryDelay;
//   - any other non-2xx returns a *StatusError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target, err := c.url(req)
	if err != nil {
		return nil, err
	}
	payload, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartClientSpan(ctx, c.cfg.Provider.String(), req.Method, req.Path)
	defer span.End()

	var (
		refreshed      bool
		rateLimitTries int
		serverTries    int
		token          string
	)

	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		if token == "" {
			token, err = c.token(ctx, req.TenantID)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
		}

		httpReq, err := c.newRequest(ctx, req, target, payload, token)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			serverTries++
			if serverTries > c.cfg.MaxRetries {
				err = fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
				telemetry.RecordError(span, err)
				return nil, err
			}
			c.logger.Warn("provider call failed, retrying",
				zap.String("path", req.Path), zap.Int("attempt", attempt), zap.Error(err))
			if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%w: read body: %v", integration.ErrPlatformInvalidResponse, readErr)
		}

		telemetry.SetAttributes(span, telemetry.SpanAttrHTTPStatus, resp.StatusCode, telemetry.SpanAttrAttempt, attempt)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil

		case resp.StatusCode == http.StatusUnauthorized && c.tokens != nil && !refreshed:
			refreshed = true
			token, err = c.tokens.ForceRefresh(ctx, req.TenantID, c.cfg.Provider, token)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			rateLimitTries++
			if rateLimitTries > c.cfg.MaxRateLimitRetries {
				return nil, c.statusError(span, resp.StatusCode, body)
			}
			delay := retryAfter(resp.Header, time.Duration(rateLimitTries)*c.cfg.RateLimitDelay)
			c.logger.Warn("provider rate limited, backing off",
				zap.String("path", req.Path), zap.Duration("delay", delay), zap.Int("attempt", rateLimitTries))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= 500:
			serverTries++
			if serverTries > c.cfg.MaxRetries {
				return nil, c.statusError(span, resp.StatusCode, body)
			}
			if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
				return nil, err
			}
			continue

		default:
			return nil, c.statusError(span, resp.StatusCode, body)
		}
	}
}

// DoJSON sends req and decodes a JSON response into out (when non-nil)
func (c *Client) DoJSON(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return nil
}

func (c *Client) token(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if c.tokens == nil {
		return c.cfg.StaticToken, nil
	}
	return c.tokens.AccessToken(ctx, tenantID, c.cfg.Provider)
}

func (c *Client) url(req *Request) (string, error) {
	raw := req.Path
	switch {
	case raw == "":
		raw = c.cfg.BaseURL
	case !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://"):
		raw = c.cfg.BaseURL + "/" + strings.TrimLeft(raw, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s: invalid url %q: %w", c.cfg.Provider, raw, err)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) newRequest(ctx context.Context, req *Request, target string, payload []byte, token string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.cfg.Provider, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if token != "" {
		if c.cfg.TokenHeader != "" {
			httpReq.Header.Set(c.cfg.TokenHeader, token)
		} else {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

func (c *Client) statusError(span trace.Span, status int, body []byte) error {
	excerpt := string(body)
	if len(excerpt) > maxErrorBody {
		excerpt = excerpt[:maxErrorBody]
	}
	err := &StatusError{Provider: c.cfg.Provider, StatusCode: status, Body: excerpt}
	telemetry.RecordError(span, err)
	return err
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return data, nil
	}
}

// retryAfter reads a Retry-After header in seconds, falling back to def
func retryAfter(h http.Header, def time.Duration) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
