// Package tmdb is a small client for The Movie Database catalog API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "ru-RU"
)

// ErrUnconfigured is returned by every call when no API key is set.
var ErrUnconfigured = errors.New("tmdb: API key is not configured")

// UpstreamError reports a non-2xx response from the catalog.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tmdb: upstream returned status %d", e.Status)
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	APIKey   string
	BaseURL  string
	Language string
}

// Client provides access to the TMDb search and popular endpoints.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *log.Logger

	apiKey   string
	baseURL  string
	language string
}

// New creates a new TMDb client.
// TMDb allows roughly 40 requests per second; stay well below that.
func New(opts Options, logger *log.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(20), 10),
		logger:      logger,
		apiKey:      opts.APIKey,
		baseURL:     baseURL,
		language:    language,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
