package metadata

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
)

// Result represents a single search match.
type Result struct {
	ID          string `json:"imdb_id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Status      string `json:"status"`
}

// Year extracts the release year from the result's release date. Returns 0
// when the provider supplied no usable date.
func (r Result) Year() int {
	date := strings.TrimSpace(r.ReleaseDate)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// Response models the paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

// Provider defines the per-language operations the core requires of the
// metadata API: candidate search and release-status lookup.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
	CheckReleased(ctx context.Context, id, title string, year int) (bool, error)
}

// Client provides access to the metadata API for a single locale.
type Client struct {
	apiKey     string
	baseURL    string
	locale     string
	httpClient *http.Client
	now        func() time.Time
}

var _ Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a metadata client bound to one locale.
func New(apiKey, baseURL, locale string, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("metadata api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("metadata base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		locale:     strings.TrimSpace(locale),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search performs a free-text movie search and returns the provider's
// candidate ordering unchanged.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search/movie")
	if err != nil {
		return nil, fmt.Errorf("parse metadata url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", c.apiKey)
	if c.locale != "" {
		params.Set("language", c.locale)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	results := make([]Result, 0, len(payload.Results))
	for _, result := range payload.Results {
		if strings.TrimSpace(result.ID) == "" {
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// CheckReleased reports whether the movie has been released in this client's
// locale. The provider either states the status outright or supplies a
// release date, which is compared against the current day.
func (c *Client) CheckReleased(ctx context.Context, id, title string, year int) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, errors.New("movie id must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/movie/" + url.PathEscape(id))
	if err != nil {
		return false, fmt.Errorf("parse metadata url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.locale != "" {
		params.Set("language", c.locale)
	}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	if title = strings.TrimSpace(title); title != "" {
		params.Set("title", title)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return false, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("metadata lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Result
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode lookup response: %w", err)
	}
	return c.released(payload), nil
}

func (c *Client) released(result Result) bool {
	if strings.EqualFold(strings.TrimSpace(result.Status), "released") {
		return true
	}
	date := strings.TrimSpace(result.ReleaseDate)
	if date == "" {
		return false
	}
	released, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return !released.After(c.now())
}
