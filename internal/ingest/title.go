package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
)

// EarthquakeStore hands out untitled earthquakes and stores their titles.
type EarthquakeStore interface {
	// ClaimUntitled returns an untitled earthquake not handed out before.
	// An earthquake without usable coordinates comes back with ok set and an
	// error wrapping domain.ErrMissingCoordinates.
	ClaimUntitled(ctx context.Context) (domain.Earthquake, bool, error)
	SaveAttribution(ctx context.Context, eq domain.Earthquake) error
}

// Titler titles stored earthquakes relative to their nearest location.
type Titler struct {
	store   EarthquakeStore
	locator domain.NearestLocator
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTitler creates a Titler.
func NewTitler(store EarthquakeStore, locator domain.NearestLocator, logger *slog.Logger, metrics *observability.Metrics) *Titler {
	return &Titler{store: store, locator: locator, logger: logger, metrics: metrics}
}

// Run titles earthquakes until the store has none left to claim. Returns
// the number given a title.
func (t *Titler) Run(ctx context.Context) (int, error) {
	titled := 0
	for {
		if err := ctx.Err(); err != nil {
			return titled, err
		}

		eq, ok, err := t.store.ClaimUntitled(ctx)
		switch {
		case ok && errors.Is(err, domain.ErrMissingCoordinates):
			t.logger.Warn("earthquake has no usable coordinates", "event_id", eq.ID, "error", err)
			eq.TitleSource = domain.TitleSourceFailed
		case err != nil:
			return titled, err
		case !ok:
			t.logger.Info("titling complete", "titled", titled)
			return titled, nil
		default:
			eq = domain.AttributeEarthquake(ctx, eq, t.locator, t.logger)
		}

		t.metrics.Attributions.WithLabelValues(eq.TitleSource).Inc()
		if err := t.store.SaveAttribution(ctx, eq); err != nil {
			return titled, err
		}
		if eq.TitleSource == domain.TitleSourceNearest {
			titled++
		}
	}
}
