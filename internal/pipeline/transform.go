package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/sismika/psgc-geo-etl/internal/observability"
)

// EarthquakeTransformer implements Transformer: it parses a bulletin, titles
// it relative to the nearest geocoded location, and serializes the result.
type EarthquakeTransformer struct {
	locator domain.NearestLocator
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates an EarthquakeTransformer. Pass a nil locator to
// forward events untitled.
func NewTransformer(locator domain.NearestLocator, logger *slog.Logger, metrics *observability.Metrics) *EarthquakeTransformer {
	return &EarthquakeTransformer{
		locator: locator,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *EarthquakeTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	event, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	event = domain.AttributeEarthquake(ctx, event, t.locator, t.logger)
	t.metrics.Attributions.WithLabelValues(event.TitleSource).Inc()

	return serializeEvent(event)
}

// serializeEvent marshals an Earthquake into the sink envelope keyed by ID.
func serializeEvent(event domain.Earthquake) (domain.OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize earthquake: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(event.ID),
		Value: data,
		Headers: map[string]string{
			"title_source": event.TitleSource,
			"processed_at": event.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
