package mongo

import (
	"fmt"
	"time"

	"github.com/sismika/psgc-geo-etl/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pointDoc is a GeoJSON Point in [lon, lat] order.
type pointDoc struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

// polygonDoc is a GeoJSON Polygon with a single outer ring.
type polygonDoc struct {
	Type        string         `bson:"type"`
	Coordinates [][][2]float64 `bson:"coordinates"`
}

type geocodeDoc struct {
	PlaceID     int64    `bson:"place_id"`
	Licence     string   `bson:"licence"`
	OSMType     string   `bson:"osm_type"`
	OSMID       int64    `bson:"osm_id"`
	Lat         string   `bson:"lat"`
	Lon         string   `bson:"lon"`
	Class       string   `bson:"class"`
	Type        string   `bson:"type"`
	PlaceRank   int      `bson:"place_rank"`
	Importance  float64  `bson:"importance"`
	AddressType string   `bson:"addresstype"`
	Name        string   `bson:"name"`
	DisplayName string   `bson:"display_name"`
	BoundingBox []string `bson:"boundingbox"`
}

type locationDoc struct {
	PSGC            string      `bson:"psgc"`
	Name            string      `bson:"name"`
	LongName        string      `bson:"longname"`
	GeographicLevel string      `bson:"geographicLevel,omitempty"`
	OldNames        string      `bson:"oldNames,omitempty"`
	CityClass       string      `bson:"cityClass,omitempty"`
	IncomeClass     string      `bson:"incomeClassification,omitempty"`
	IsRural         bool        `bson:"isRural"`
	Population      int         `bson:"population"`
	Status          int         `bson:"status"`
	Coord           *pointDoc   `bson:"coord,omitempty"`
	BoundingBox     *polygonDoc `bson:"boundingBox,omitempty"`
	OSMResult       *geocodeDoc `bson:"osmresult,omitempty"`
}

func newPointDoc(p domain.GeoPoint) *pointDoc {
	return &pointDoc{Type: "Point", Coordinates: []float64{p.Lon, p.Lat}}
}

func (d *pointDoc) toDomain() *domain.GeoPoint {
	if d == nil || len(d.Coordinates) != 2 {
		return nil
	}
	return &domain.GeoPoint{Lon: d.Coordinates[0], Lat: d.Coordinates[1]}
}

func newPolygonDoc(b domain.BoundingBox) *polygonDoc {
	return &polygonDoc{Type: "Polygon", Coordinates: [][][2]float64{b.Ring}}
}

func (d *polygonDoc) toDomain() *domain.BoundingBox {
	if d == nil || len(d.Coordinates) == 0 {
		return nil
	}
	return &domain.BoundingBox{Ring: d.Coordinates[0]}
}

func newGeocodeDoc(g domain.GeocodeResult) *geocodeDoc {
	d := geocodeDoc(g)
	return &d
}

func (d *geocodeDoc) toDomain() *domain.GeocodeResult {
	if d == nil {
		return nil
	}
	g := domain.GeocodeResult(*d)
	return &g
}

func newLocationDoc(r domain.LocationRecord) locationDoc {
	d := locationDoc{
		PSGC:            string(r.Code),
		Name:            r.Name,
		LongName:        r.LongName,
		GeographicLevel: r.GeographicLevel,
		OldNames:        r.OldNames,
		CityClass:       r.CityClass,
		IncomeClass:     r.IncomeClass,
		IsRural:         r.IsRural,
		Population:      r.Population,
		Status:          int(r.Status),
	}
	if r.Point != nil {
		d.Coord = newPointDoc(*r.Point)
	}
	if r.BoundingBox != nil {
		d.BoundingBox = newPolygonDoc(*r.BoundingBox)
	}
	if r.Geocode != nil {
		d.OSMResult = newGeocodeDoc(*r.Geocode)
	}
	return d
}

func (d locationDoc) toDomain() domain.LocationRecord {
	return domain.LocationRecord{
		Code:            domain.Code(d.PSGC),
		Name:            d.Name,
		LongName:        d.LongName,
		GeographicLevel: d.GeographicLevel,
		OldNames:        d.OldNames,
		CityClass:       d.CityClass,
		IncomeClass:     d.IncomeClass,
		IsRural:         d.IsRural,
		Population:      d.Population,
		Status:          domain.Status(d.Status),
		Point:           d.Coord.toDomain(),
		BoundingBox:     d.BoundingBox.toDomain(),
		Geocode:         d.OSMResult.toDomain(),
	}
}

// earthquakeDoc mirrors the collector's stored bulletin plus the
// attribution fields written back by the titler.
type earthquakeDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Title string             `bson:"title,omitempty"`
	Time  time.Time          `bson:"time"`
	Coord *pointDoc          `bson:"coord"`
	Depth float64            `bson:"depth"`
	Mi    float64            `bson:"mi"`
	Mb    float64            `bson:"mb"`
	Ms    float64            `bson:"ms"`
	Mw    float64            `bson:"mw"`
	LI    string             `bson:"li,omitempty"`

	NearestLocation string     `bson:"nearestLocation,omitempty"`
	DistanceKm      float64    `bson:"distanceKm,omitempty"`
	Bearing         float64    `bson:"bearing,omitempty"`
	TitleSource     string     `bson:"titleSource,omitempty"`
	TitledAt        *time.Time `bson:"titledAt,omitempty"`
}

// toDomain maps the document to an Earthquake. A missing or malformed
// coordinate yields ErrMissingCoordinates alongside the fields that did map.
func (d earthquakeDoc) toDomain() (domain.Earthquake, error) {
	eq := domain.Earthquake{
		ID:               d.ID.Hex(),
		Title:            d.Title,
		Time:             d.Time.UTC(),
		Depth:            d.Depth,
		Mi:               d.Mi,
		Mb:               d.Mb,
		Ms:               d.Ms,
		Mw:               d.Mw,
		LocalIntensities: d.LI,
		NearestLocation:  d.NearestLocation,
		DistanceKm:       d.DistanceKm,
		Bearing:          d.Bearing,
		TitleSource:      d.TitleSource,
	}
	p := d.Coord.toDomain()
	if p == nil {
		return eq, fmt.Errorf("earthquake %s: %w", eq.ID, domain.ErrMissingCoordinates)
	}
	if err := p.Validate(); err != nil {
		return eq, fmt.Errorf("earthquake %s: %w: %w", eq.ID, domain.ErrMissingCoordinates, err)
	}
	eq.Coord = *p
	return eq, nil
}
