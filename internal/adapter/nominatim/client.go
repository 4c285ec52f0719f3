// Package nominatim geocodes PSGC long names with the OpenStreetMap
// Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
	"golang.org/x/time/rate"
)

// Client implements domain.Geocoder using the Nominatim /search endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client that issues at most one request per
// interval.
func NewClient(baseURL, userAgent string, timeout, interval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// Search returns the top search hit for query.
func (c *Client) Search(ctx context.Context, query string) (domain.GeocodeResult, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.GeocodeResult{}, false, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"format": {"json"},
		"limit":  {"1"},
		"q":      {query},
	}
	results, err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, false, err
	}
	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		c.logger.Debug("nominatim returned no results", "query", query)
		return domain.GeocodeResult{}, false, nil
	}
	c.metrics.GeocodeRequests.WithLabelValues("hit").Inc()
	return results[0], true, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.GeocodeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("nominatim search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var results []domain.GeocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return results, nil
}
