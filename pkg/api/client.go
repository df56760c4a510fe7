// Package api is a JSON client for the note server: documents, versions,
// shares, tags, AI helpers and uploads. Failed calls are returned as *Error
// and never retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdnote/internal/logging"
)

const (
	// DefaultTimeout bounds each request when no http.Client is supplied.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 4 << 10

	// maxResponseSize caps successful response bodies.
	maxResponseSize = 10 << 20
)

// ErrInvalidBaseURL is returned by New for an unusable base URL.
var ErrInvalidBaseURL = errors.New("api: base URL must be absolute")

// Client talks to the note server. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	token  string
	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if !base.IsAbs() {
		return nil, ErrInvalidBaseURL
	}

	client := &Client{
		base:   base,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for idx, seg := range segments {
		escaped[idx] = url.PathEscape(seg)
	}
	target := c.base.String() + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// doJSON sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		logging.FieldPath, req.URL.Path,
		logging.FieldStatus, resp.StatusCode,
		logging.FieldDuration, time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
