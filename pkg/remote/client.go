// Package remote talks to the episode analysis service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/logging"
)

const (
	episodesPath = "/eps"
	refetchPath  = "/eps/re-fetch"

	requestIDHeader  = "X-Request-ID"
	defaultUserAgent = "akats"

	// maxErrorBody bounds how much of an unexpected response is kept for
	// error messages.
	maxErrorBody = 512
)

// HTTPError reports a non-2xx answer from the service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote: unexpected status %d: %s", e.StatusCode, e.Body)
}

// RefetchResult is the decoded answer to a re-fetch request. A non-empty
// Error means the service rejected it.
type RefetchResult struct {
	Error string `json:"error,omitempty"`
}

// Rejected reports whether the service refused the re-fetch.
func (r RefetchResult) Rejected() bool {
	return r.Error != ""
}

// Client calls the two endpoints exposed by the episode service. The zero
// timeout is intentional; callers bound requests with their context.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Component(logger, "remote")
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a client for the service rooted at base. A bare host is
// assumed to be http.
func NewClient(base string, opts ...Option) (*Client, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, fmt.Errorf("remote: server address required")
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("remote: parse server address: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		base:      u,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		logger:    logging.Component(nil, "remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Episodes fetches the episode directory.
func (c *Client) Episodes(ctx context.Context) ([]episode.Episode, error) {
	req, err := c.newRequest(ctx, http.MethodGet, episodesPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp)
	}

	var eps []episode.Episode
	if err := json.NewDecoder(resp.Body).Decode(&eps); err != nil {
		return nil, fmt.Errorf("remote: decode episodes: %w", err)
	}
	return eps, nil
}

// Refetch asks the service to re-analyse new episodes. The decoded body
// decides the outcome whatever the status code; a non-2xx reply is only a
// transport error when its body is empty or not JSON.
func (c *Client) Refetch(ctx context.Context, key string) (RefetchResult, error) {
	payload, err := json.Marshal(struct {
		Key string `json:"key"`
	}{Key: key})
	if err != nil {
		return RefetchResult{}, fmt.Errorf("remote: encode re-fetch request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, refetchPath, bytes.NewReader(payload))
	if err != nil {
		return RefetchResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return RefetchResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RefetchResult{}, fmt.Errorf("remote: read re-fetch response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	var result RefetchResult
	if len(bytes.TrimSpace(body)) == 0 {
		if !ok {
			return RefetchResult{}, &HTTPError{StatusCode: resp.StatusCode}
		}
		return result, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		if !ok {
			return RefetchResult{}, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(body))}
		}
		return RefetchResult{}, fmt.Errorf("remote: decode re-fetch response: %w", err)
	}
	// A decoded body is authoritative: no error field means accepted.
	return result, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("remote: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	rid := req.Header.Get(requestIDHeader)
	c.logger.Debug("request", "method", req.Method, "path", req.URL.Path, logging.FieldRequestID, rid)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "path", req.URL.Path, logging.FieldRequestID, rid, "error", err)
		return nil, fmt.Errorf("remote: %s %s: %w", req.Method, req.URL.Path, err)
	}
	c.logger.Debug("response", "path", req.URL.Path, "status", resp.StatusCode, logging.FieldRequestID, rid)
	return resp, nil
}

func newHTTPError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
