package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"golang.org/x/time/rate"

	"github.com/mobil-koeln/moko-board/internal/logging"
	"github.com/mobil-koeln/moko-board/internal/models"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetries       = 2
	defaultRetryInterval = 500 * time.Millisecond
	userAgent            = "moko-board/1.0 (+https://github.com/mobil-koeln/moko-board)"
)

// Cache interface for caching HTTP responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Client talks to a transport.rest instance (VBB by default)
type Client struct {
	http          *req.Client
	baseURL       string
	cache         Cache
	limiter       *rate.Limiter
	retries       int
	retryInterval time.Duration
	logger        *logging.Logger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout sets the per-attempt HTTP timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithBaseURL points the client at another transport.rest instance
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRetries sets how often transient failures are retried
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRetryInterval sets the pause between retries
func WithRetryInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryInterval = d
	}
}

// WithCache enables caching with the provided cache implementation
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithRateLimit throttles outgoing requests. Callers block until the
// limiter admits them or their context ends.
func WithRateLimit(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *logging.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		http: req.C().
			SetTimeout(defaultTimeout).
			SetUserAgent(userAgent).
			SetCommonHeader("Accept", "application/json"),
		baseURL:       BaseURL,
		retries:       defaultRetries,
		retryInterval: defaultRetryInterval,
		logger:        logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}

	c.http.
		SetCommonRetryCount(c.retries).
		SetCommonRetryFixedInterval(c.retryInterval).
		SetCommonRetryCondition(shouldRetry).
		SetCommonRetryHook(func(resp *req.Response, err error) {
			if err != nil {
				c.logger.Printf("retrying after error: %v", err)
				return
			}
			c.logger.Printf("retrying after status %d", resp.StatusCode)
		})

	return c, nil
}

// shouldRetry retries network failures and gateway-class upstream answers.
// transport.rest instances answer 502-504 when HAFAS is congested.
func shouldRetry(resp *req.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil || resp.Response == nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// BaseURL returns the upstream base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetDepartures fetches departures at a stop for the next windowMinutes
// minutes. It satisfies board.Fetcher.
func (c *Client) GetDepartures(ctx context.Context, stopID string, windowMinutes int) ([]models.RawDeparture, error) {
	body, err := c.GetDeparturesRaw(ctx, stopID, windowMinutes)
	if err != nil {
		return nil, err
	}

	var resp models.DeparturesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse departures response: %w", err)
	}

	departures := make([]models.RawDeparture, 0, len(resp.Departures))
	for i := range resp.Departures {
		departures = append(departures, resp.Departures[i].ToRawDeparture())
	}

	c.logger.Debugf("stop %s: %d departures", stopID, len(departures))
	return departures, nil
}

// GetDeparturesRaw fetches departures and returns raw JSON
func (c *Client) GetDeparturesRaw(ctx context.Context, stopID string, windowMinutes int) (json.RawMessage, error) {
	if strings.TrimSpace(stopID) == "" {
		return nil, ErrMissingField("stopID")
	}
	if windowMinutes <= 0 {
		return nil, ErrInvalidValue("windowMinutes", windowMinutes)
	}

	params := url.Values{}
	params.Set("duration", strconv.Itoa(windowMinutes))

	endpoint := fmt.Sprintf(EndpointStopDepartures, url.PathEscape(stopID))
	return c.doRequest(ctx, endpoint, params)
}

// SearchStationsRaw autocompletes station names and returns the upstream
// JSON untouched.
func (c *Client) SearchStationsRaw(ctx context.Context, query string) (json.RawMessage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingField("query")
	}

	params := url.Values{}
	params.Set("query", query)

	return c.doRequest(ctx, EndpointStations, params)
}

// SearchLocations searches for stops by name
func (c *Client) SearchLocations(ctx context.Context, query string) ([]models.Location, error) {
	body, err := c.SearchLocationsRaw(ctx, query)
	if err != nil {
		return nil, err
	}

	var resp []models.LocationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse locations response: %w", err)
	}

	locations := make([]models.Location, 0, len(resp))
	for _, entry := range resp {
		locations = append(locations, *entry.ToLocation())
	}

	return locations, nil
}

// SearchLocationsRaw searches for stops and returns raw JSON
func (c *Client) SearchLocationsRaw(ctx context.Context, query string) (json.RawMessage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingField("query")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("results", strconv.Itoa(defaultLocationResults))
	params.Set("addresses", "false")
	params.Set("poi", "false")

	return c.doRequest(ctx, EndpointLocations, params)
}

// doRequest performs a GET with optional caching and rate limiting
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	if c.cache != nil {
		if data, ok := c.cache.Get(reqURL); ok {
			c.logger.Debugf("cache hit %s", reqURL)
			return data, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
	}

	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(reqURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	c.logger.Debugf("GET %s -> %d in %s", endpoint, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	body, err := resp.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIErrorFromBody(resp.StatusCode, resp.Status, endpoint, body)
	}

	if c.cache != nil {
		if err := c.cache.Set(reqURL, body); err != nil {
			c.logger.Printf("cache write failed: %v", err)
		}
	}

	return body, nil
}
