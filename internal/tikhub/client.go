// Package tikhub is a minimal client for the TikHub aggregation API.
package tikhub

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/longkey1/xhsnote/internal/version"
)

const (
	// DefaultBaseURL is the base URL for the TikHub API
	DefaultBaseURL = "https://api.tikhub.io"
	// DefaultTimeout bounds a single request
	DefaultTimeout = 10 * time.Second

	feedNotesPath = "/api/v1/xiaohongshu/web_v2/fetch_feed_notes"

	// maxErrorBody caps how much of a non-2xx body is kept for diagnostics
	maxErrorBody = 512
)

// ErrTimeout is returned (wrapped) when a request exceeds its deadline
var ErrTimeout = errors.New("request timed out")

// StatusError is returned when the API responds with a non-2xx HTTP status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client is a TikHub API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithToken sets the bearer token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new TikHub API client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// FetchFeedNotes retrieves the raw feed-notes response body for a note ID.
// The body is returned undecoded.
func (c *Client) FetchFeedNotes(ctx context.Context, noteID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL, err := url.Parse(c.baseURL + feedNotesPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse endpoint URL")
	}
	q := reqURL.Query()
	q.Set("note_id", noteID)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			c.logger.Warn("tikhub request timed out",
				zap.String("note_id", noteID),
				zap.Duration("timeout", c.timeout),
			)
			return nil, errors.Wrap(ErrTimeout, err.Error())
		}
		c.logger.Error("tikhub request failed",
			zap.String("note_id", noteID),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Wrap(ErrTimeout, err.Error())
		}
		return nil, errors.Wrap(err, "failed to read response body")
	}

	c.logger.Debug("tikhub response received",
		zap.String("note_id", noteID),
		zap.Int("http_status", resp.StatusCode),
		zap.Int("size", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", version.UserAgent())
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
