package nominatim

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserAgent     = "psgc-geo-etl-test/1.0"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, metrics *observability.Metrics) *Client {
	return NewClient(baseURL, testUserAgent, 5*time.Second, time.Millisecond, metrics, slog.New(slog.DiscardHandler))
}

func pasayResult() domain.GeocodeResult {
	return domain.GeocodeResult{
		PlaceID:     298765432,
		Licence:     "Data © OpenStreetMap contributors, ODbL 1.0. http://osm.org/copyright",
		OSMType:     "relation",
		OSMID:       1920178,
		Lat:         "14.5378",
		Lon:         "121.0014",
		Class:       "boundary",
		Type:        "administrative",
		PlaceRank:   16,
		Importance:  0.54,
		AddressType: "city",
		Name:        "Pasay",
		DisplayName: "Pasay, Southern Manila District, Metro Manila, Philippines",
		BoundingBox: []string{"14.4990", "14.5656", "120.9633", "121.0242"},
	}
}

func TestClient_Search_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "Pasay City, NCR, Philippines", r.URL.Query().Get("q"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode([]domain.GeocodeResult{pasayResult()}))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL+"/", metrics)

	result, ok, err := c.Search(context.Background(), "Pasay City, NCR, Philippines")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pasayResult(), result)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("hit")), 0)

	p, err := result.Point()
	require.NoError(t, err)
	assert.InDelta(t, 121.0014, p.Lon, 1e-9)
	assert.InDelta(t, 14.5378, p.Lat, 1e-9)
}

func TestClient_Search_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, metrics)

	_, ok, err := c.Search(context.Background(), "Nowhere, Philippines")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("empty")), 0)
}

func TestClient_Search_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("usage policy violation"))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, metrics)

	_, ok, err := c.Search(context.Background(), "Pasay City, NCR, Philippines")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "usage policy violation")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("error")), 0)
}

func TestClient_Search_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())

	_, _, err := c.Search(context.Background(), "Pasay")
	assert.ErrorContains(t, err, "decode response")
}

func TestClient_Search_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testUserAgent, 50*time.Millisecond, time.Millisecond,
		observability.NewMetricsForTesting(), slog.New(slog.DiscardHandler))

	_, _, err := c.Search(context.Background(), "Pasay")
	assert.Error(t, err)
}

func TestClient_Search_RateLimited(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	interval := 100 * time.Millisecond
	c := NewClient(srv.URL, testUserAgent, time.Second, interval,
		observability.NewMetricsForTesting(), slog.New(slog.DiscardHandler))

	for range 3 {
		_, _, err := c.Search(context.Background(), "Pasay")
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 3)
	// Allow some slack for timer granularity.
	assert.GreaterOrEqual(t, calls[2].Sub(calls[0]), 2*interval-20*time.Millisecond)
}

func TestClient_Search_CancelledWhileWaiting(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", testUserAgent, time.Second, time.Hour,
		observability.NewMetricsForTesting(), slog.New(slog.DiscardHandler))
	// Drain the single burst token.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Search(ctx, "Pasay")
	assert.ErrorContains(t, err, "rate limit wait")
}
