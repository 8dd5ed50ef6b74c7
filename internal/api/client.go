// Package api is the typed HTTP client for the Genta backend. It injects
// bearer tokens, retries a 401 exactly once with a fresh token, validates
// response payloads against the shared JSON Schemas, and converts error
// responses into the client-wide error envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gentaprep/genta-tui/internal/auth"
)

// Client talks to the Genta REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenProvider
	log     *zap.Logger

	// onUnauthorized runs when a request is still 401 after the refresh
	// retry. Callers inside a practice flow suppress it per request so an
	// expired token degrades to an inline error instead of losing session
	// state.
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithUnauthorizedHandler sets the default persisted-401 handler, typically
// a redirect to sign-in.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a Client rooted at baseURL.
func New(baseURL string, tokens auth.TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string // versioned path, e.g. /api/v1/sessions
	Query  url.Values
	Body   any // JSON-encoded when non-nil

	// Out receives the decoded body of any 2xx response when non-nil.
	Out any

	// Schema names the shared JSON Schema the 200 body must conform to.
	// Empty skips validation. Other 2xx statuses (e.g. 202 from the job
	// endpoint) are decoded but not validated.
	Schema string

	// NoRedirect suppresses the unauthorized handler for this call. Every
	// practice-session operation sets it.
	NoRedirect bool
}

// Do executes the request and returns the HTTP status. Non-2xx responses
// return (status, *Error); transport failures return (0, err). On 401 the
// request is retried exactly once with a freshly obtained token before the
// error is surfaced.
func (c *Client) Do(ctx context.Context, req Request) (int, error) {
	var encoded []byte
	if req.Body != nil {
		var err error
		encoded, err = json.Marshal(req.Body)
		if err != nil {
			return 0, fmt.Errorf("encode request body: %w", err)
		}
	}

	status, body, err := c.send(ctx, req, encoded)
	if err != nil {
		return 0, err
	}

	if status == http.StatusUnauthorized {
		// One retry with a fresh token. The provider may refresh under the
		// hood; if the token is simply expired this is enough.
		status, body, err = c.send(ctx, req, encoded)
		if err != nil {
			return 0, err
		}
		if status == http.StatusUnauthorized {
			if !req.NoRedirect && c.onUnauthorized != nil {
				c.onUnauthorized()
			}
			return status, decodeError(status, body)
		}
	}

	if status < 200 || status > 299 {
		return status, decodeError(status, body)
	}

	if status == http.StatusOK && req.Schema != "" {
		if err := Validate(req.Schema, body); err != nil {
			return status, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}
	}

	if req.Out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, req.Out); err != nil {
			return status, fmt.Errorf("decode response: %w", err)
		}
	}
	return status, nil
}

// send performs a single HTTP round trip, returning the status and body.
func (c *Client) send(ctx context.Context, req Request, encoded []byte) (int, []byte, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var rdr io.Reader
	if encoded != nil {
		rdr = bytes.NewReader(encoded)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, rdr)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.New().String())

	token, err := c.tokens.Token(ctx)
	if err != nil && err != auth.ErrNoToken {
		return 0, nil, fmt.Errorf("obtain token: %w", err)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		return 0, nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Info("request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	return resp.StatusCode, body, nil
}

// decodeError converts a non-2xx body into *Error, synthesizing an envelope
// when the body is not the standard shape.
func decodeError(status int, body []byte) error {
	var apiErr Error
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" && apiErr.Message != "" {
		apiErr.Status = status
		return &apiErr
	}
	return &Error{
		Code:    "UNKNOWN_ERROR",
		Message: "An unexpected error occurred",
		Status:  status,
	}
}
