package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(code, longName string) domain.LocationRecord {
	r := loc(code, longName)
	r.LongName = longName
	return r
}

func TestGeocodeJob_Run_SearchAndParentFallback(t *testing.T) {
	store := newMemStore(
		resolved("1300000000", "NCR, Philippines"),
		resolved("1380600000", "City of Manila, NCR, Philippines"),
		resolved("1380601001", "Barangay 1, City of Manila, NCR, Philippines"),
	)
	geocoder := &mapGeocoder{results: map[string]domain.GeocodeResult{
		"NCR, Philippines":                 geocodeHit("14.55", "121.0"),
		"City of Manila, NCR, Philippines": geocodeHit("14.59", "120.98"),
	}}
	metrics := observability.NewMetricsForTesting()

	report, err := NewGeocodeJob(store, geocoder, discardLogger(), metrics).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, GeocodeReport{Searched: 2, FromParent: 1}, report)
	assert.Equal(t, []string{
		"NCR, Philippines",
		"City of Manila, NCR, Philippines",
		"Barangay 1, City of Manila, NCR, Philippines",
	}, geocoder.queries)

	bgy := store.get("1380601001")
	assert.Equal(t, domain.StatusCompleted, bgy.Status)
	require.NotNil(t, bgy.Point)
	assert.Equal(t, domain.GeoPoint{Lon: 120.98, Lat: 14.59}, *bgy.Point)
	require.NotNil(t, bgy.BoundingBox)
	assert.Len(t, bgy.BoundingBox.Ring, 5)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeOutcomes.WithLabelValues(domain.GeoSourceParent)), 0)
}

func TestGeocodeJob_Run_FailureMarksRequested(t *testing.T) {
	store := newMemStore(
		resolved("1300000000", "NCR, Philippines"),
		resolved("0100000000", "Ilocos Region, Philippines"),
	)
	geocoder := &mapGeocoder{results: map[string]domain.GeocodeResult{
		"Ilocos Region, Philippines": geocodeHit("16.6", "120.6"),
	}}
	metrics := observability.NewMetricsForTesting()

	report, err := NewGeocodeJob(store, geocoder, discardLogger(), metrics).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, GeocodeReport{Searched: 1, Failed: 1}, report)
	assert.Equal(t, domain.StatusRequested, store.get("1300000000").Status)
	assert.Nil(t, store.get("1300000000").Point)
	assert.Equal(t, domain.StatusCompleted, store.get("0100000000").Status)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeOutcomes.WithLabelValues("failed")), 0)
}

func TestGeocodeJob_Run_GeocoderErrorMarksRequested(t *testing.T) {
	store := newMemStore(resolved("1300000000", "NCR, Philippines"))
	geocoder := &mapGeocoder{err: errors.New("status 503")}

	report, err := NewGeocodeJob(store, geocoder, discardLogger(), observability.NewMetricsForTesting()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, domain.StatusRequested, store.get("1300000000").Status)
}

func TestGeocodeJob_Run_SkipsOtherStatuses(t *testing.T) {
	done := resolved("1300000000", "NCR, Philippines")
	done.Status = domain.StatusCompleted
	store := newMemStore(done)
	geocoder := &mapGeocoder{}

	report, err := NewGeocodeJob(store, geocoder, discardLogger(), observability.NewMetricsForTesting()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, GeocodeReport{}, report)
	assert.Empty(t, geocoder.queries)
}

func TestGeocodeJob_Run_Cancelled(t *testing.T) {
	store := newMemStore(resolved("1300000000", "NCR, Philippines"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGeocodeJob(store, &mapGeocoder{}, discardLogger(), observability.NewMetricsForTesting()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatusAddressParsed, store.get("1300000000").Status)
}
