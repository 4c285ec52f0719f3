package nominatim

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	mu     sync.Mutex
	calls  int
	result domain.GeocodeResult
	found  bool
	err    error
}

func (m *countingGeocoder) Search(_ context.Context, _ string) (domain.GeocodeResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.result, m.found, m.err
}

func newCached(t *testing.T, inner domain.Geocoder, size int) (*CachedGeocoder, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	c, err := NewCachedGeocoder(inner, size, metrics)
	require.NoError(t, err)
	return c, metrics
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{result: pasayResult(), found: true}
	cached, metrics := newCached(t, inner, 10)

	r1, ok, err := cached.Search(context.Background(), "Pasay City, NCR, Philippines")
	require.NoError(t, err)
	require.True(t, ok)
	r2, ok, err := cached.Search(context.Background(), "Pasay City, NCR, Philippines")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: pasayResult(), found: true}
	cached, _ := newCached(t, inner, 10)

	_, _, _ = cached.Search(context.Background(), "Pasay City, NCR, Philippines")
	_, _, _ = cached.Search(context.Background(), "Makati City, NCR, Philippines")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached, _ := newCached(t, inner, 10)

	_, ok, err := cached.Search(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, _ = cached.Search(context.Background(), "Nowhere")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("status 503")}
	cached, _ := newCached(t, inner, 10)

	_, _, err := cached.Search(context.Background(), "Pasay")
	require.Error(t, err)
	_, _, err = cached.Search(context.Background(), "Pasay")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingGeocoder{result: pasayResult(), found: true}
	cached, _ := newCached(t, inner, 2)

	_, _, _ = cached.Search(context.Background(), "a")
	_, _, _ = cached.Search(context.Background(), "b")
	_, _, _ = cached.Search(context.Background(), "a") // hit, a is now most recent
	_, _, _ = cached.Search(context.Background(), "c") // evicts b
	_, _, _ = cached.Search(context.Background(), "a") // hit
	_, _, _ = cached.Search(context.Background(), "b") // miss

	assert.Equal(t, 4, inner.calls)
}

func TestNewCachedGeocoder_InvalidSize(t *testing.T) {
	_, err := NewCachedGeocoder(&countingGeocoder{}, 0, observability.NewMetricsForTesting())
	assert.Error(t, err)
}
