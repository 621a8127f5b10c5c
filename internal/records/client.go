// Package records fetches raw per-post sentiment records for a company.
//
// This package enables sentiboard to:
// - Fetch records from the records API with bearer-token authentication
// - Decode the raw, minimal and full record shapes the API emits
// - Cache fetched records in memory or in Redis
// - Generate deterministic synthetic records for demos
package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gauthierbraillon/sentiboard/internal/metrics"
	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

const defaultBaseURL = "http://127.0.0.1:8000"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Fetcher returns the raw records of one company.
type Fetcher interface {
	FetchRawSentimentRecords(ctx context.Context, companyID string) ([]sentiment.RawRecord, error)
}

// TokenSource supplies bearer tokens. Refresh is called once when the API rejects a token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) AccessToken(context.Context) (string, error) { return string(t), nil }

func (t StaticToken) Refresh(context.Context) (string, error) {
	return "", fmt.Errorf("%w: static token cannot be refreshed", ErrUnauthorized)
}

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets the records API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTokenSource authenticates requests with tokens from ts.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithLogger sets the client logger.
func WithLogger(log *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client is a records API client.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	tokens     TokenSource
	log        *zap.SugaredLogger
}

// NewClient creates a new records API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		log:        zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchRawSentimentRecords retrieves every stored record of a company.
func (c *Client) FetchRawSentimentRecords(ctx context.Context, companyID string) ([]sentiment.RawRecord, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, errors.New("company is required")
	}

	start := time.Now()
	raw, err := c.fetchRecords(ctx, companyID)
	metrics.RecordFetch(time.Since(start), err)
	if err != nil {
		c.log.Warnw("records fetch failed", "company", companyID, "error", err)
		return nil, err
	}

	c.log.Debugw("records fetched", "company", companyID, "records", len(raw), "took", time.Since(start))
	return raw, nil
}

func (c *Client) fetchRecords(ctx context.Context, companyID string) ([]sentiment.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/api/social-media-data/by-company/%s/", c.baseURL, url.PathEscape(companyID))

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	raw, err := DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse records response: %w", err)
	}
	return raw, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := c.get(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && c.tokens != nil {
		c.log.Debugw("token rejected, refreshing", "url", endpoint)
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w - please run 'sentiboard auth login'", ErrUnauthorized, err)
		}
		status, body, err = c.get(ctx, endpoint, token)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		return nil, c.handleAPIError(status)
	}

	return body, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w - please run 'sentiboard auth login'", ErrUnauthorized, err)
	}
	return token, nil
}

func (c *Client) get(ctx context.Context, endpoint, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func (c *Client) handleAPIError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: records API authentication failed - please run 'sentiboard auth login'", ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%w: records API access denied - check your account permissions", ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%w: no records endpoint for this company", ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("records API rate limit exceeded - please try again later")
	case http.StatusServiceUnavailable:
		return fmt.Errorf("records API temporarily unavailable - please try again in a few minutes")
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("records API server error - please try again later")
	default:
		return fmt.Errorf("records API error (status %d) - please try again", statusCode)
	}
}
