package domain

import (
	"context"
	"time"
)

// RawEarthquake is the JSON published by the bulletin collector.
// Coordinates are GeoJSON [lon, lat].
type RawEarthquake struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Time  string `json:"time"` // RFC 3339
	Coord struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"coord"`
	Depth float64 `json:"depth"`
	Mi    float64 `json:"mi"`
	Mb    float64 `json:"mb"`
	Ms    float64 `json:"ms"`
	Mw    float64 `json:"mw"`
	LI    string  `json:"li"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Earthquake is a parsed seismic event.
type Earthquake struct {
	ID    string    `json:"id"`
	Title string    `json:"title,omitempty"`
	Time  time.Time `json:"time"`
	Coord GeoPoint  `json:"coord"`
	Depth float64   `json:"depth"` // km

	// Magnitudes by scale.
	Mi float64 `json:"mi"` // intensity-derived
	Mb float64 `json:"mb"` // body-wave
	Ms float64 `json:"ms"` // surface-wave
	Mw float64 `json:"mw"` // moment

	LocalIntensities string `json:"li,omitempty"`

	// Attribution enrichment fields.
	NearestLocation string  `json:"nearest_location,omitempty"`
	DistanceKm      float64 `json:"distance_km,omitempty"`
	Bearing         float64 `json:"bearing,omitempty"`
	TitleSource     string  `json:"title_source,omitempty"` // "nearest", "existing", "failed", "unavailable"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
