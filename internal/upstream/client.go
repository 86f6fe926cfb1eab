package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"facilityhub/internal/logging"
	"facilityhub/internal/metrics"
)

// DefaultTimeout bounds a single upstream call when none is configured.
const DefaultTimeout = 5 * time.Second

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 1 << 20

// UserEmailHeader carries the session's email to upstreams that enforce
// ownership.
const UserEmailHeader = "X-User-Email"

type userEmailKey struct{}

// WithUserEmail marks calls made with ctx as acting for email.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey{}, email)
}

func userEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey{}).(string)
	return email
}

// ErrUnavailable is returned when the upstream could not be reached or did
// not answer within the timeout.
var ErrUnavailable = errors.New("upstream unavailable")

// ErrInvalidResponse is returned when a 2xx answer carries a body that is not
// a single JSON object, including bodies larger than the read limit.
var ErrInvalidResponse = errors.New("upstream returned an invalid response body")

// RejectedError is returned when the upstream answered with a non-2xx status.
type RejectedError struct {
	StatusCode int
	// Detail is the upstream's own error message, if its body carried one.
	Detail string
	Body   map[string]any
}

func (e *RejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("upstream rejected request: status=%d, detail=%s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("upstream rejected request: status=%d", e.StatusCode)
}

// Response is a successful upstream answer. Body is never nil.
type Response struct {
	StatusCode int
	Body       map[string]any
}

// Client calls one upstream service with JSON bodies. Each call is a single
// attempt bounded by the configured timeout.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the upstream reachable at baseURL. name labels
// log lines and metrics.
func New(name, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the upstream label.
func (c *Client) Name() string {
	return c.name
}

// Do sends body (JSON-encoded when non-nil) to path. It returns a *Response on
// 2xx with an object body, a *RejectedError on any other status, an error
// wrapping ErrInvalidResponse on 2xx with any other body, and an error wrapping
// ErrUnavailable when no answer arrived.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", c.name, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.RequestID(ctx); id != "" {
		req.Header.Set(logging.RequestIDHeader, id)
	}
	if email := userEmail(ctx); email != "" {
		req.Header.Set(UserEmailHeader, email)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(c.name, metrics.OutcomeUnavailable, time.Since(start))
		logger.Error().Err(err).Str("upstream", c.name).Str("method", method).Str("path", path).Msg("upstream unreachable")
		return nil, fmt.Errorf("%s %s %s: %w: %v", c.name, method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		// the connection died mid-body; treat like no answer at all
		metrics.ObserveUpstream(c.name, metrics.OutcomeUnavailable, time.Since(start))
		return nil, fmt.Errorf("%s %s %s: read body: %w: %v", c.name, method, path, ErrUnavailable, err)
	}
	truncated := len(raw) > maxBodyBytes
	if truncated {
		raw = raw[:maxBodyBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// error bodies are best effort: only the detail is of interest
		decoded, _ := decodeObject(raw)
		if decoded == nil {
			decoded = map[string]any{}
		}
		metrics.ObserveUpstream(c.name, metrics.OutcomeRejected, time.Since(start))
		logger.Warn().Str("upstream", c.name).Str("method", method).Str("path", path).
			Int("status", resp.StatusCode).Msg("upstream rejected request")
		return nil, &RejectedError{
			StatusCode: resp.StatusCode,
			Detail:     detailOf(decoded),
			Body:       decoded,
		}
	}

	if truncated {
		metrics.ObserveUpstream(c.name, metrics.OutcomeInvalid, time.Since(start))
		logger.Error().Str("upstream", c.name).Str("method", method).Str("path", path).
			Int("status", resp.StatusCode).Msg("upstream response exceeds size limit")
		return nil, fmt.Errorf("%s %s %s: body exceeds %d bytes: %w", c.name, method, path, maxBodyBytes, ErrInvalidResponse)
	}
	decoded, err := decodeObject(raw)
	if err != nil {
		metrics.ObserveUpstream(c.name, metrics.OutcomeInvalid, time.Since(start))
		logger.Error().Err(err).Str("upstream", c.name).Str("method", method).Str("path", path).
			Int("status", resp.StatusCode).Msg("upstream response is not a JSON object")
		return nil, fmt.Errorf("%s %s %s: %w: %v", c.name, method, path, ErrInvalidResponse, err)
	}

	metrics.ObserveUpstream(c.name, metrics.OutcomeSuccess, time.Since(start))
	logger.Debug().Str("upstream", c.name).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("upstream call")
	return &Response{StatusCode: resp.StatusCode, Body: decoded}, nil
}

// decodeObject parses the body as a single JSON object. An empty body is an
// empty object.
func decodeObject(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("body is JSON null")
	}
	return obj, nil
}

func detailOf(body map[string]any) string {
	for _, key := range []string{"detail", "error", "message"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
