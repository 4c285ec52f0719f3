package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// Title source labels.
const (
	TitleSourceNearest     = "nearest"
	TitleSourceExisting    = "existing"
	TitleSourceFailed      = "failed"
	TitleSourceUnavailable = "unavailable"
)

// ParseRawEvent deserializes a RawEvent's value into an Earthquake.
func ParseRawEvent(raw RawEvent) (Earthquake, error) {
	var rec RawEarthquake
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Earthquake{}, fmt.Errorf("parse raw event: %w", err)
	}
	return ParseRawEarthquake(rec, raw.Value)
}

// ParseRawEarthquake validates a collector record. The coordinate is
// required; the event time falls back to zero when absent.
func ParseRawEarthquake(rec RawEarthquake, payload []byte) (Earthquake, error) {
	if len(rec.Coord.Coordinates) != 2 {
		return Earthquake{}, fmt.Errorf("parse raw event: coordinates: want [lon, lat], got %d values", len(rec.Coord.Coordinates))
	}
	coord := GeoPoint{Lon: rec.Coord.Coordinates[0], Lat: rec.Coord.Coordinates[1]}
	if err := coord.Validate(); err != nil {
		return Earthquake{}, fmt.Errorf("parse raw event: %w", err)
	}

	var eventTime time.Time
	if s := strings.TrimSpace(rec.Time); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return Earthquake{}, fmt.Errorf("parse raw event: time: %w", err)
		}
		eventTime = t.UTC()
	}

	id := rec.ID
	if id == "" {
		id = generateID(coord, eventTime, rec.Depth)
	}

	return Earthquake{
		ID:               id,
		Title:            strings.TrimSpace(rec.Title),
		Time:             eventTime,
		Coord:            coord,
		Depth:            rec.Depth,
		Mi:               rec.Mi,
		Mb:               rec.Mb,
		Ms:               rec.Ms,
		Mw:               rec.Mw,
		LocalIntensities: strings.TrimSpace(rec.LI),
		RawPayload:       payload,
	}, nil
}

// generateID produces a deterministic ID from the event's key fields so that
// replaying the same bulletin yields the same ID.
func generateID(coord GeoPoint, t time.Time, depth float64) string {
	input := fmt.Sprintf("%.4f|%.4f|%s|%g", coord.Lon, coord.Lat, t.Format(time.RFC3339), depth)
	hash := sha256.Sum256([]byte(input))
	return "eq-" + hex.EncodeToString(hash[:8])
}

// AttributeEarthquake titles an event relative to its nearest location.
// Events that already carry a title are left alone. If locator is nil or
// attribution fails the event is returned untitled with TitleSource set
// accordingly (graceful degradation).
func AttributeEarthquake(ctx context.Context, event Earthquake, locator NearestLocator, logger *slog.Logger) Earthquake {
	event.ProcessedAt = clock.Now()

	if event.Title != "" {
		event.TitleSource = TitleSourceExisting
		return event
	}
	if locator == nil {
		event.TitleSource = TitleSourceUnavailable
		return event
	}

	a, err := Attribute(ctx, event.Coord, locator)
	if err != nil {
		source := TitleSourceFailed
		if errors.Is(err, ErrNoReferenceLocation) {
			source = TitleSourceUnavailable
		}
		logger.Warn("earthquake attribution failed",
			"event_id", event.ID,
			"lon", event.Coord.Lon,
			"lat", event.Coord.Lat,
			"error", err,
		)
		event.TitleSource = source
		return event
	}

	event.Title = a.String()
	event.NearestLocation = a.Reference.LongName
	event.DistanceKm = math.Round(a.DistanceMeters) / 1000
	event.Bearing = a.BearingDegrees
	event.TitleSource = TitleSourceNearest
	return event
}
