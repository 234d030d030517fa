package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultCoversURL = "https://covers.openlibrary.org"
	defaultUserAgent = "Shelf/1.0 (https://github.com/mrlokans/shelf)"
)

// Options configures an OpenLibraryClient. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	CoversURL string
	UserAgent string
	Timeout   time.Duration

	// RequestsPerSecond caps outgoing lookups. Zero disables the limit.
	RequestsPerSecond float64
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	coversURL  string
	userAgent  string
	limiter    *rate.Limiter
}

// NewOpenLibraryClient creates a new OpenLibrary API client.
func NewOpenLibraryClient(opts Options) *OpenLibraryClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CoversURL == "" {
		opts.CoversURL = DefaultCoversURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &OpenLibraryClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    opts.BaseURL,
		coversURL:  opts.CoversURL,
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// FetchMetadata looks up one identifier through api/books?jscmd=data.
// The body is decoded in a single step; anything that is not a JSON object
// of records is reported as an error.
func (c *OpenLibraryClient) FetchMetadata(ctx context.Context, isbn string) (Response, error) {
	if isbn == "" {
		return nil, fmt.Errorf("empty ISBN")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	u := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data", c.baseURL, url.QueryEscape(BibKey(isbn)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ISBN data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body == nil {
		body = Response{}
	}

	return body, nil
}

// CoverImageURL returns the large cover image URL for an identifier.
// Nothing checks that the image exists.
func (c *OpenLibraryClient) CoverImageURL(isbn string) string {
	return CoverImageURL(c.coversURL, isbn)
}

// CoverImageURL builds a cover URL against the given covers host.
func CoverImageURL(coversURL, isbn string) string {
	return fmt.Sprintf("%s/b/isbn/%s-L.jpg", coversURL, isbn)
}
