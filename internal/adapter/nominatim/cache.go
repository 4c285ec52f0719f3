package nominatim

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. Safe for
// concurrent use.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru.Cache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) (*CachedGeocoder, error) {
	cache, err := lru.New(maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create geocode cache: %w", err)
	}
	return &CachedGeocoder{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}, nil
}

func (c *CachedGeocoder) Search(ctx context.Context, query string) (domain.GeocodeResult, bool, error) {
	if v, ok := c.cache.Get(query); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return v.(domain.GeocodeResult), true, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, ok, err := c.inner.Search(ctx, query)
	if err != nil || !ok {
		return result, ok, err
	}
	// Only cache hits so "not found" answers can be retried later.
	c.cache.Add(query, result)
	return result, true, nil
}
