package ingest

import (
	"context"
	"log/slog"

	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
)

// GeocodeStore supplies locations awaiting a geocode and records results.
type GeocodeStore interface {
	domain.LocationLookup
	NextUnresolved(ctx context.Context) (domain.LocationRecord, bool, error)
	ApplyGeocode(ctx context.Context, code domain.Code, outcome domain.GeocodeOutcome) error
	MarkRequested(ctx context.Context, code domain.Code) error
}

// GeocodeReport summarizes a geocode run.
type GeocodeReport struct {
	Searched   int
	FromParent int
	Failed     int
}

// GeocodeJob geocodes every stored location whose long name is resolved.
type GeocodeJob struct {
	store    GeocodeStore
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewGeocodeJob creates a GeocodeJob.
func NewGeocodeJob(store GeocodeStore, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *GeocodeJob {
	return &GeocodeJob{store: store, geocoder: geocoder, logger: logger, metrics: metrics}
}

// Run processes locations one at a time until none remain in
// StatusAddressParsed. Every processed location leaves that status, either
// completed or marked requested, so the loop always advances. Pacing is left
// to the geocoder.
func (j *GeocodeJob) Run(ctx context.Context) (GeocodeReport, error) {
	var report GeocodeReport
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec, ok, err := j.store.NextUnresolved(ctx)
		if err != nil {
			return report, err
		}
		if !ok {
			break
		}

		outcome, err := domain.GeocodeLocation(ctx, rec, j.geocoder, j.store)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			j.logger.Warn("geocode failed", "psgc", rec.Code, "longname", rec.LongName, "error", err)
			j.metrics.GeocodeOutcomes.WithLabelValues("failed").Inc()
			report.Failed++
			if err := j.store.MarkRequested(ctx, rec.Code); err != nil {
				return report, err
			}
			continue
		}

		if err := j.store.ApplyGeocode(ctx, rec.Code, outcome); err != nil {
			return report, err
		}
		j.metrics.GeocodeOutcomes.WithLabelValues(outcome.Source).Inc()
		if outcome.Source == domain.GeoSourceParent {
			report.FromParent++
			j.logger.Info("geocoded from parent", "psgc", rec.Code, "parent", outcome.ParentCode)
		} else {
			report.Searched++
			j.logger.Debug("geocoded", "psgc", rec.Code, "display_name", outcome.Result.DisplayName)
		}
	}

	j.logger.Info("geocode complete",
		"searched", report.Searched,
		"from_parent", report.FromParent,
		"failed", report.Failed,
	)
	return report, nil
}
