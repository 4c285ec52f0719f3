package domain

import (
	"fmt"
	"strconv"
)

// Status tracks a location's progress through ingest and geocoding.
type Status int

const (
	StatusQueued        Status = iota // read from the datafile, nothing derived yet
	StatusAddressParsed               // long name resolved, awaiting geocode
	StatusRequested                   // geocode attempted and failed
	StatusCompleted                   // geocoded
)

// GeoPoint is a WGS-84 coordinate in decimal degrees.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Validate checks that the coordinate is within range.
func (p GeoPoint) Validate() error {
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", p.Lon)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", p.Lat)
	}
	return nil
}

// BoundingBox is a closed rectangular ring in GeoJSON [lon, lat] order.
type BoundingBox struct {
	Ring [][2]float64 `json:"ring"`
}

// NewBoundingBox builds the ring west→east along the south edge, then back
// along the north edge, repeating the first vertex last.
func NewBoundingBox(south, north, west, east float64) BoundingBox {
	return BoundingBox{Ring: [][2]float64{
		{west, south},
		{east, south},
		{east, north},
		{west, north},
		{west, south},
	}}
}

// LocationRecord is a PSGC location with its derived fields.
type LocationRecord struct {
	Code            Code           `json:"psgc"`
	Name            string         `json:"name"`
	LongName        string         `json:"longname"`
	GeographicLevel string         `json:"geographic_level,omitempty"`
	OldNames        string         `json:"old_names,omitempty"`
	CityClass       string         `json:"city_class,omitempty"`
	IncomeClass     string         `json:"income_class,omitempty"`
	IsRural         bool           `json:"is_rural"`
	Population      int            `json:"population"`
	Status          Status         `json:"status"`
	Point           *GeoPoint      `json:"coord,omitempty"`
	BoundingBox     *BoundingBox   `json:"bounding_box,omitempty"`
	Geocode         *GeocodeResult `json:"geocode,omitempty"`
}

// SetLongName assigns the long name exactly once.
func (r *LocationRecord) SetLongName(name string) error {
	if r.LongName != "" {
		return ErrLongNameSet
	}
	r.LongName = name
	return nil
}

// GeocodeResult is a single Nominatim search hit. Coordinates are kept as
// the strings Nominatim returns; use Point and Bounds to parse them.
type GeocodeResult struct {
	PlaceID     int64    `json:"place_id"`
	Licence     string   `json:"licence"`
	OSMType     string   `json:"osm_type"`
	OSMID       int64    `json:"osm_id"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	Class       string   `json:"class"`
	Type        string   `json:"type"`
	PlaceRank   int      `json:"place_rank"`
	Importance  float64  `json:"importance"`
	AddressType string   `json:"addresstype"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"` // south, north, west, east
}

// Point parses the result's coordinate.
func (g GeocodeResult) Point() (GeoPoint, error) {
	lat, err := strconv.ParseFloat(g.Lat, 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("parse lat %q: %w", g.Lat, err)
	}
	lon, err := strconv.ParseFloat(g.Lon, 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("parse lon %q: %w", g.Lon, err)
	}
	p := GeoPoint{Lon: lon, Lat: lat}
	return p, p.Validate()
}

// Bounds parses the result's bounding box.
func (g GeocodeResult) Bounds() (BoundingBox, error) {
	if len(g.BoundingBox) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box: want 4 values, got %d", len(g.BoundingBox))
	}
	var v [4]float64
	for i, s := range g.BoundingBox {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("parse bounding box %q: %w", s, err)
		}
		v[i] = f
	}
	return NewBoundingBox(v[0], v[1], v[2], v[3]), nil
}
