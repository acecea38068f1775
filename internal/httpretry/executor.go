package httpretry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"seasonmap/internal/logging"
)

const (
	defaultMaxAttempts       = 3
	defaultTimeout           = 10 * time.Second
	defaultBackoff           = 2 * time.Second
	defaultRetryAfterSeconds = 5
)

// Options carries the per-call request shape.
type Options struct {
	Header http.Header
	Query  url.Values
	Body   []byte
}

// Response is a fully read HTTP response. The body is closed by the executor.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor issues single HTTP calls with bounded retry and rate-limit handling.
type Executor struct {
	client      *http.Client
	logger      *slog.Logger
	sleep       SleepFunc
	maxAttempts int
	backoff     time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient overrides the default HTTP client (10s timeout).
func WithHTTPClient(client *http.Client) Option {
	return func(e *Executor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithSleep replaces the wait used between attempts.
func WithSleep(fn SleepFunc) Option {
	return func(e *Executor) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

// WithMaxAttempts caps the number of attempts per call. Values below one
// are ignored.
func WithMaxAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// New creates an Executor.
func New(logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      logging.NewComponentLogger(logger, "http"),
		sleep:       sleepContext,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type state int

const (
	stateAttempting state = iota
	stateWaitingRateLimit
	stateWaitingBackoff
	stateExhausted
	stateSucceeded
)

// Do performs the request. The boolean is false when every attempt failed or
// ctx was cancelled; non-429 HTTP statuses are returned to the caller as-is.
func (e *Executor) Do(ctx context.Context, method, rawURL string, opts Options) (*Response, bool) {
	var (
		attempt int
		wait    time.Duration
		resp    *Response
	)
	current := stateAttempting
	for {
		switch current {
		case stateAttempting:
			attempt++
			r, err := e.roundTrip(ctx, method, rawURL, opts)
			switch {
			case err != nil && ctx.Err() != nil:
				current = stateExhausted
			case err != nil:
				e.logger.Error("request failed",
					logging.String(logging.FieldEventType, "http_request_error"),
					logging.String("url", redact(rawURL)),
					logging.Int("attempt", attempt),
					logging.Int("max_attempts", e.maxAttempts),
					logging.Error(err))
				current = e.next(attempt, stateWaitingBackoff)
				wait = e.backoff
			case r.StatusCode == http.StatusTooManyRequests:
				wait = retryAfter(r.Header, time.Now())
				logging.WarnWithContext(e.logger, "rate limit hit", "http_rate_limited",
					logging.String("url", redact(rawURL)),
					logging.Duration("retry_after", wait),
					logging.Int("attempt", attempt),
					logging.Int("max_attempts", e.maxAttempts),
					logging.String(logging.FieldErrorHint, "reduce request pacing if this repeats"),
					logging.String(logging.FieldImpact, "request delayed"))
				current = e.next(attempt, stateWaitingRateLimit)
			default:
				resp = r
				current = stateSucceeded
			}
		case stateWaitingRateLimit, stateWaitingBackoff:
			if err := e.sleep(ctx, wait); err != nil {
				current = stateExhausted
				continue
			}
			current = stateAttempting
		case stateExhausted:
			e.logger.Debug("request abandoned",
				logging.String("url", redact(rawURL)),
				logging.Int("attempts", attempt),
				logging.Bool("cancelled", ctx.Err() != nil))
			return nil, false
		case stateSucceeded:
			return resp, true
		}
	}
}

// next moves to the waiting state when attempts remain.
func (e *Executor) next(attempt int, waiting state) state {
	if attempt >= e.maxAttempts {
		return stateExhausted
	}
	return waiting
}

func (e *Executor) roundTrip(ctx context.Context, method, rawURL string, opts Options) (*Response, error) {
	endpoint, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if len(opts.Query) > 0 {
		params := endpoint.Query()
		for key, values := range opts.Query {
			params[key] = append([]string(nil), values...)
		}
		endpoint.RawQuery = params.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range opts.Header {
		req.Header[key] = append([]string(nil), values...)
	}

	requestStart := time.Now()
	resp, err := e.client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body (latency=%v): %w", latency, err)
	}
	e.logger.Debug("request completed",
		logging.String("method", method),
		logging.String("url", redact(rawURL)),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency))
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: payload}, nil
}

// retryAfter reads the delay from a 429 response. Seconds and HTTP dates are
// accepted; anything else falls back to five seconds.
func retryAfter(header http.Header, now time.Time) time.Duration {
	fallback := defaultRetryAfterSeconds * time.Second
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return fallback
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return fallback
}

// redact strips credentials carried in the query string before logging.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
