package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.jikan.moe/v4"

	// Jikan allows 3 requests per second and 60 per minute
	defaultRatePerSecond = 1
	defaultBurst         = 3

	defaultTimeout = 30 * time.Second

	// bodies of failed responses are truncated to this many bytes in errors
	maxErrorBody = 512
)

// searchTypeParams maps a catalog type token to the search endpoint's type filter.
var searchTypeParams = map[string]string{
	"tv":          "tv",
	"movie":       "movie",
	"ova":         "ova",
	"ona":         "ona",
	"special":     "special",
	"manga":       "manga",
	"manhwa":      "manhwa",
	"manhua":      "manhua",
	"light novel": "lightnovel",
	"novel":       "novel",
	"one-shot":    "oneshot",
	"doujinshi":   "doujin",
}

// Catalog is the subset of the catalog API the sync and enrichment paths use.
type Catalog interface {
	GetSeason(ctx context.Context, year int, season string, page int) (*SeasonPage, error)
	Search(ctx context.Context, query, typeToken string) ([]Record, error)
}

// ClientConfig holds catalog client settings. Zero values select defaults.
type ClientConfig struct {
	BaseURL       string
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// Client issues requests against the Jikan v4 API. It rate limits itself
// but never retries; a failed call surfaces as *CatalogUnavailableError.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new Jikan API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultRatePerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:      logger.Named("jikan-client"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GetSeason fetches one page of the seasonal listing
func (c *Client) GetSeason(ctx context.Context, year int, season string, page int) (*SeasonPage, error) {
	endpoint := fmt.Sprintf("/seasons/%d/%s", year, url.PathEscape(strings.ToLower(season)))

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var response SeasonPage
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, fmt.Errorf("fetch season %d/%s page %d: %w", year, season, page, err)
	}

	return &response, nil
}

// Search runs a free-text search. Results keep the catalog's ranking.
func (c *Client) Search(ctx context.Context, query, typeToken string) ([]Record, error) {
	endpoint := "/anime"
	if IsMangaType(typeToken) {
		endpoint = "/manga"
	}

	params := url.Values{}
	params.Set("q", query)
	if p, ok := searchTypeParams[normalize(typeToken)]; ok {
		params.Set("type", p)
	}

	var response SearchResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, fmt.Errorf("search %q (%s): %w", query, typeToken, err)
	}

	return response.Data, nil
}

// doRequest performs a rate limited GET and decodes the JSON body into result
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Coanime/1.0")

	c.logger.Debug("catalog request", zap.String("url", fullURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &CatalogUnavailableError{Endpoint: endpoint, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("catalog returned error status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return &CatalogUnavailableError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &CatalogUnavailableError{Endpoint: endpoint, Cause: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}
