// Package englify talks to the Englify learning platform API and exposes
// its catalog as supervisor tools.
package englify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the production API.
	DefaultBaseURL = "https://v2-api-erp.englifyschool.com"

	// DefaultTimeout bounds each API request.
	DefaultTimeout = 30 * time.Second

	maxResponseSize = 4 << 20
)

var (
	// ErrNotConfigured is returned by NewClient without an API token.
	ErrNotConfigured = errors.New("englify: API configuration missing")

	// ErrNoResult is returned when a response has no result field.
	ErrNoResult = errors.New("englify: response has no result")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %s - %s", e.Status, e.Body)
}

// Config holds API credentials.
type Config struct {
	BaseURL     string
	APIToken    string
	BearerToken string
}

// Client is an Englify API client.
type Client struct {
	baseURL     string
	apiToken    string
	bearerToken string
	http        *http.Client
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client. Its timeout is kept as is.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a client. The default HTTP client is traced with
// OpenTelemetry and times out after DefaultTimeout.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, ErrNotConfigured
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("englify: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:     strings.TrimRight(base, "/"),
		apiToken:    cfg.APIToken,
		bearerToken: cfg.BearerToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "englify")
	return c, nil
}

type envelope[T any] struct {
	Result *T `json:"result"`
}

// get fetches path and decodes the result field of the response into T.
func get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	endpoint := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-token", c.apiToken)
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "path", path, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("request completed", "path", path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Result == nil {
		return nil, ErrNoResult
	}
	return env.Result, nil
}

// Profile returns the signed-in student.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	return get[Profile](ctx, c, "/student/v1/profile")
}

// Leaderboard returns the ranking of a level.
func (c *Client) Leaderboard(ctx context.Context, level int) (*Leaderboard, error) {
	return get[Leaderboard](ctx, c, fmt.Sprintf("/student/v1/ranking/%d", level))
}

// Levels returns every course level.
func (c *Client) Levels(ctx context.Context) ([]Level, error) {
	return deref(get[[]Level](ctx, c, "/student/v1/level"))
}

// Podcasts returns the podcast catalog.
func (c *Client) Podcasts(ctx context.Context) ([]Resource, error) {
	return deref(get[[]Resource](ctx, c, "/student/v1/resource/podcasts"))
}

// Podcast returns one podcast.
func (c *Client) Podcast(ctx context.Context, id string) (*Resource, error) {
	return get[Resource](ctx, c, "/student/v1/resource/podcast/"+url.PathEscape(id))
}

// Movies returns the movie catalog.
func (c *Client) Movies(ctx context.Context) ([]Resource, error) {
	return deref(get[[]Resource](ctx, c, "/student/v1/resource/movies"))
}

// Movie returns one movie.
func (c *Client) Movie(ctx context.Context, id string) (*Resource, error) {
	return get[Resource](ctx, c, "/student/v1/resource/movie/"+url.PathEscape(id))
}

// Books returns the book catalog.
func (c *Client) Books(ctx context.Context) ([]Resource, error) {
	return deref(get[[]Resource](ctx, c, "/student/v1/resource/books"))
}

func deref[T any](v *T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return *v, nil
}
