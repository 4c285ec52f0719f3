package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
)

// LocationSource yields datafile records until io.EOF.
type LocationSource interface {
	Read() (domain.LocationRecord, error)
}

// LocationWriter is the store the ingester resolves parents against and
// writes new locations to.
type LocationWriter interface {
	domain.LocationLookup
	InsertIfAbsent(ctx context.Context, rec domain.LocationRecord) (bool, error)
}

// Report summarizes an ingest run.
type Report struct {
	Read       int
	Inserted   int
	Existing   int
	Invalid    int
	Passes     int
	Unresolved []domain.Code
}

// Ingester loads PSGC records into the store with resolved long names.
type Ingester struct {
	store   LocationWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewIngester creates an Ingester writing to store.
func NewIngester(store LocationWriter, logger *slog.Logger, metrics *observability.Metrics) *Ingester {
	return &Ingester{store: store, logger: logger, metrics: metrics}
}

// Run ingests every record from src in file order. Records whose parent is
// not stored yet are deferred and retried in further passes until a pass
// inserts nothing new; what remains is listed in Report.Unresolved. Store
// errors abort the run.
func (in *Ingester) Run(ctx context.Context, src LocationSource) (Report, error) {
	var report Report
	var pending []domain.LocationRecord

	for {
		rec, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, err
		}
		report.Read++

		code, err := domain.ParseCode(string(rec.Code))
		if err != nil {
			in.logger.Warn("skipping invalid psgc code", "psgc", rec.Code, "name", rec.Name, "error", err)
			in.count("invalid")
			report.Invalid++
			continue
		}
		rec.Code = code
		pending = append(pending, rec)
	}

	for len(pending) > 0 {
		report.Passes++
		deferred, err := in.pass(ctx, pending, &report)
		if err != nil {
			return report, err
		}
		if len(deferred) == len(pending) {
			pending = deferred
			break
		}
		if len(deferred) > 0 {
			in.logger.Info("retrying deferred locations", "count", len(deferred), "pass", report.Passes+1)
		}
		pending = deferred
	}

	for _, rec := range pending {
		in.logger.Warn("location parent never resolved", "psgc", rec.Code, "name", rec.Name)
		in.count("unresolved")
		report.Unresolved = append(report.Unresolved, rec.Code)
	}

	in.logger.Info("ingest complete",
		"read", report.Read,
		"inserted", report.Inserted,
		"existing", report.Existing,
		"invalid", report.Invalid,
		"unresolved", len(report.Unresolved),
		"passes", report.Passes,
	)
	return report, nil
}

// pass ingests recs once and returns those whose parent is still missing.
func (in *Ingester) pass(ctx context.Context, recs []domain.LocationRecord, report *Report) ([]domain.LocationRecord, error) {
	var deferred []domain.LocationRecord
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, exists, err := in.store.LookupLocation(ctx, rec.Code)
		if err != nil {
			in.count("failed")
			return nil, fmt.Errorf("ingest %s: %w", rec.Code, err)
		}
		if exists {
			in.logger.Debug("location already stored", "psgc", rec.Code)
			in.count("existing")
			report.Existing++
			continue
		}

		if err := domain.ResolveRecord(ctx, &rec, in.store); err != nil {
			var unresolved *domain.UnresolvedParentError
			if errors.As(err, &unresolved) {
				in.count("deferred")
				deferred = append(deferred, rec)
				continue
			}
			in.count("failed")
			return nil, fmt.Errorf("ingest %s: %w", rec.Code, err)
		}

		inserted, err := in.store.InsertIfAbsent(ctx, rec)
		if err != nil {
			in.count("failed")
			return nil, err
		}
		if !inserted {
			in.count("existing")
			report.Existing++
			continue
		}
		in.count("inserted")
		report.Inserted++
	}
	return deferred, nil
}

func (in *Ingester) count(outcome string) {
	in.metrics.LocationsIngested.WithLabelValues(outcome).Inc()
}
