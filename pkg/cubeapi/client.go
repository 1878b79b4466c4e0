// Package cubeapi fetches the data model of a running Cube deployment from
// its meta endpoint.
package cubeapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/leapstack-labs/lkml2cube/pkg/cube"
)

// Defaults for Config zero values.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetries      = 3
	DefaultRetryWait    = 500 * time.Millisecond
	DefaultRetryWaitMax = 5 * time.Second
)

// continueWait is the body Cube returns with 200 while it compiles the schema.
const continueWait = "Continue wait"

// ErrMissingToken is returned when no API token is configured.
var ErrMissingToken = errors.New("a valid token must be provided to access the Cube meta API")

// RequestError is returned for non-2xx responses.
type RequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("failed to fetch meta data from %s: %d %s", e.URL, e.StatusCode, strings.TrimSpace(e.Body))
}

// Config holds client options.
type Config struct {
	URL       string
	Token     string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	Logger    *slog.Logger
}

// Client talks to the Cube meta API.
type Client struct {
	http   *resty.Client
	url    string
	token  string
	logger *slog.Logger
}

// NewClient creates a client for the meta endpoint at cfg.URL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	metaURL, err := ExtendedURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = DefaultRetryWait
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{url: metaURL, token: cfg.Token, logger: logger}
	c.http = resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(max(cfg.RetryWait, DefaultRetryWaitMax)).
		SetHeader("Accept", "application/json").
		AddRetryCondition(retryable)

	c.http.AddRetryHook(func(res *resty.Response, err error) {
		c.logger.Warn("retrying meta request",
			"url", c.url,
			"status", res.StatusCode(),
			"attempt", res.Request.Attempt,
			"error", err)
	})
	c.http.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		c.logger.Debug("meta response",
			"url", c.url,
			"status", res.StatusCode(),
			"duration", res.Time())
		return nil
	})
	return c, nil
}

// ExtendedURL adds the "extended" flag to a meta URL unless already present.
// The extended form includes member SQL and cube sources.
func ExtendedURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid meta url %q", raw)
	}
	if u.Query().Has("extended") {
		return raw, nil
	}
	if u.RawQuery == "" {
		u.RawQuery = "extended"
	} else {
		u.RawQuery += "&extended"
	}
	return u.String(), nil
}

// URL returns the URL requested by Meta.
func (c *Client) URL() string {
	return c.url
}

// Meta fetches the extended meta model.
func (c *Client) Meta(ctx context.Context) (*cube.Meta, error) {
	var meta cube.Meta
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetResult(&meta).
		ForceContentType("application/json").
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meta data: %w", err)
	}
	if !res.IsSuccess() {
		return nil, &RequestError{URL: c.url, StatusCode: res.StatusCode(), Body: res.String()}
	}
	if strings.Contains(res.String(), continueWait) {
		return nil, &RequestError{URL: c.url, StatusCode: res.StatusCode(), Body: res.String()}
	}

	c.logger.Info("fetched cube meta", "url", c.url, "cubes", len(meta.Cubes))
	return &meta, nil
}

func retryable(res *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	switch res.StatusCode() {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return res.IsSuccess() && strings.Contains(res.String(), continueWait)
}
