package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 10 requests per second per OpenAlex documentation.
	RateLimit = 10.0

	// MaxPerPage is the largest page OpenAlex serves.
	MaxPerPage = 200
)

// Client is a rate-limited HTTP client for the OpenAlex works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	email      string
	apiKey     string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEmail sets the contact address sent as mailto for the polite pool.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithAPIKey sets the API key for premium access.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRateLimit overrides the request rate (rate.Inf disables limiting).
func WithRateLimit(limit rate.Limit) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, 1)
	}
}

// NewClient creates a new OpenAlex API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	if email := os.Getenv("OPENALEX_EMAIL"); email != "" {
		c.email = email
	}
	if key := os.Getenv("OPENALEX_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// checkHTTPErrors returns an error if the HTTP response is not a success.
func checkHTTPErrors(resp *http.Response, query string) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Query:      query,
		}
	}
	return nil
}

// escapeSegment escapes the characters that would end a path segment early.
// Slashes are left alone because DOIs carry them and OpenAlex expects them raw.
var escapeSegment = strings.NewReplacer("?", "%3F", "#", "%23", " ", "%20", "%", "%25")

// get performs a GET request against path and returns the raw body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.email != "" {
		params.Set("mailto", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.email != "" {
		req.Header.Set("User-Agent", "oara (mailto:"+c.email+")")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, path); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return body, nil
}

// decodeWork parses a single-work body. An empty body or a work without an
// id means the source had nothing for the query.
func decodeWork(body []byte) (*Work, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrNotFound
	}
	var work Work
	if err := json.Unmarshal(body, &work); err != nil {
		return nil, fmt.Errorf("%w: parsing work: %v", ErrInvalidResponse, err)
	}
	if work.ID == "" {
		return nil, ErrNotFound
	}
	return &work, nil
}

// decodeWorks parses a list envelope.
func decodeWorks(body []byte) ([]Work, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var resp WorksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing results: %v", ErrInvalidResponse, err)
	}
	return resp.Results, nil
}

// WorkByDOI fetches a work by exact DOI.
func (c *Client) WorkByDOI(ctx context.Context, doi string) (*Work, error) {
	doi = NormalizeDOI(doi)
	if doi == "" {
		return nil, ErrNotFound
	}

	body, err := c.get(ctx, "/works/doi:"+escapeSegment.Replace(doi), nil)
	if err != nil {
		return nil, err
	}
	return decodeWork(body)
}

// SearchTitle returns the best title match.
func (c *Client) SearchTitle(ctx context.Context, title string) (*Work, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrNotFound
	}

	params := url.Values{}
	params.Set("search", title)
	params.Set("per-page", "1")

	body, err := c.get(ctx, "/works", params)
	if err != nil {
		return nil, err
	}
	works, err := decodeWorks(body)
	if err != nil {
		return nil, err
	}
	if len(works) == 0 || works[0].ID == "" {
		return nil, ErrNotFound
	}
	return &works[0], nil
}

// Work fetches a work by OpenAlex id (either "W123" or the full URL form).
func (c *Client) Work(ctx context.Context, id string) (*Work, error) {
	short := ShortID(id)
	if short == "" {
		return nil, ErrNotFound
	}

	body, err := c.get(ctx, "/works/"+escapeSegment.Replace(short), nil)
	if err != nil {
		return nil, err
	}
	return decodeWork(body)
}

// CitingWorks runs the reverse-citation query cites:<id>, returning at most
// limit works in the order OpenAlex returns them.
func (c *Client) CitingWorks(ctx context.Context, id string, limit int) ([]Work, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit > MaxPerPage {
		limit = MaxPerPage
	}

	params := url.Values{}
	params.Set("filter", "cites:"+ShortID(id))
	params.Set("per-page", strconv.Itoa(limit))

	body, err := c.get(ctx, "/works", params)
	if err != nil {
		return nil, err
	}
	works, err := decodeWorks(body)
	if err != nil {
		return nil, err
	}
	if len(works) > limit {
		works = works[:limit]
	}
	return works, nil
}
