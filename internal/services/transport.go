package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/desertthunder/dailydrive/internal/shared"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultRetryWait = 500 * time.Millisecond
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%v: status %d from %s: %s", shared.ErrAPIRequest, e.StatusCode, e.URL, body)
}

// Unwrap makes [errors.Is] match [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Retryable reports whether the failure is a server-side error.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// TransportOptions configures an [HTTPTransport]. Zero values select defaults.
type TransportOptions struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
	// RoundTripper is the underlying transport, wrapped with otelhttp instrumentation.
	RoundTripper http.RoundTripper
	Logger       *log.Logger
}

// HTTPTransport implements [Transport] over net/http with bounded retries.
type HTTPTransport struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryWait  time.Duration
	logger     *log.Logger
}

// NewHTTPTransport creates a transport. A negative MaxRetries disables retries.
func NewHTTPTransport(opts TransportOptions) *HTTPTransport {
	if opts.BaseURL == "" {
		opts.BaseURL = PartnerBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultRetries
	} else if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}
	if opts.RoundTripper == nil {
		opts.RoundTripper = http.DefaultTransport
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	instrumented := otelhttp.NewTransport(
		opts.RoundTripper,
		otelhttp.WithMetricAttributesFn(
			func(r *http.Request) []attribute.KeyValue {
				return []attribute.KeyValue{
					attribute.String("host", r.URL.Host),
					attribute.String("path", r.URL.Path),
					attribute.String("method", r.Method),
				}
			},
		),
	)

	return &HTTPTransport{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		client:     &http.Client{Timeout: opts.Timeout, Transport: instrumented},
		maxRetries: opts.MaxRetries,
		retryWait:  opts.RetryWait,
		logger:     opts.Logger,
	}
}

// Do sends req and decodes a JSON object body. Numbers decode as [json.Number].
func (t *HTTPTransport) Do(ctx context.Context, req Request) (map[string]any, error) {
	body, err := t.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: response is not a JSON object", shared.ErrMalformedResponse)
	}
	return out, nil
}

// Fetch sends req and returns the raw body of a 2xx response.
//
// Network errors and 5xx responses are retried with exponential backoff. 4xx responses are not.
func (t *HTTPTransport) Fetch(ctx context.Context, req Request) ([]byte, error) {
	url := t.resolve(req)
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			wait := t.retryWait * time.Duration(1<<(attempt-1))
			t.logger.Warn("retrying request", "url", url, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := t.send(ctx, method, url, req)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", t.maxRetries, lastErr)
}

func (t *HTTPTransport) send(ctx context.Context, method, url string, req Request) ([]byte, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	for _, c := range req.Cookies {
		httpReq.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	t.logger.Debug("sending request", "method", method, "url", url)
	resp, err := t.client.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: url, Body: string(data)}
	}
	return data, nil
}

func (t *HTTPTransport) resolve(req Request) string {
	url := req.Path
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = t.baseURL + "/" + strings.TrimLeft(url, "/")
	}
	if req.RawQuery != "" {
		url += "?" + req.RawQuery
	}
	return url
}
