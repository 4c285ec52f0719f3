package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/sismika/psgc-geo-etl/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LocationStore reads and writes PSGC location records. It implements
// domain.LocationLookup and domain.NearestLocator.
type LocationStore struct {
	coll *mongo.Collection
}

// NewLocationStore wraps the locations collection.
func NewLocationStore(coll *mongo.Collection) *LocationStore {
	return &LocationStore{coll: coll}
}

// EnsureIndexes creates the unique code index and the 2dsphere index
// required by $geoNear.
func (s *LocationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "psgc", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "coord", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create location indexes: %w", err)
	}
	return nil
}

func (s *LocationStore) LookupLocation(ctx context.Context, code domain.Code) (domain.LocationRecord, bool, error) {
	var doc locationDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "psgc", Value: string(code)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.LocationRecord{}, false, nil
	}
	if err != nil {
		return domain.LocationRecord{}, false, fmt.Errorf("find location %s: %w", code, err)
	}
	return doc.toDomain(), true, nil
}

// NearestLocation returns the geocoded location closest to p that has a
// resolved long name.
func (s *LocationStore) NearestLocation(ctx context.Context, p domain.GeoPoint) (domain.ReferenceLocation, bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: newPointDoc(p)},
			{Key: "key", Value: "coord"},
			{Key: "distanceField", Value: "distance"},
			{Key: "spherical", Value: true},
			{Key: "query", Value: bson.D{{Key: "longname", Value: bson.D{{Key: "$ne", Value: ""}}}}},
		}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$project", Value: bson.D{
			{Key: "longname", Value: 1},
			{Key: "coord", Value: 1},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.ReferenceLocation{}, false, fmt.Errorf("geo near query: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return domain.ReferenceLocation{}, false, fmt.Errorf("geo near query: %w", err)
		}
		return domain.ReferenceLocation{}, false, nil
	}

	var doc locationDoc
	if err := cur.Decode(&doc); err != nil {
		return domain.ReferenceLocation{}, false, fmt.Errorf("decode nearest location: %w", err)
	}
	point := doc.Coord.toDomain()
	if point == nil {
		return domain.ReferenceLocation{}, false, nil
	}
	return domain.ReferenceLocation{Point: *point, LongName: doc.LongName}, true, nil
}

// InsertIfAbsent stores rec unless its code already exists. Reports whether
// a document was inserted.
func (s *LocationStore) InsertIfAbsent(ctx context.Context, rec domain.LocationRecord) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "psgc", Value: string(rec.Code)}},
		bson.D{{Key: "$setOnInsert", Value: newLocationDoc(rec)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("insert location %s: %w", rec.Code, err)
	}
	return res.UpsertedCount > 0, nil
}

// NextUnresolved returns the lowest-coded location still waiting to be
// geocoded. Code order puts every parent ahead of its children.
func (s *LocationStore) NextUnresolved(ctx context.Context) (domain.LocationRecord, bool, error) {
	var doc locationDoc
	err := s.coll.FindOne(ctx,
		bson.D{{Key: "status", Value: int(domain.StatusAddressParsed)}},
		options.FindOne().SetSort(bson.D{{Key: "psgc", Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.LocationRecord{}, false, nil
	}
	if err != nil {
		return domain.LocationRecord{}, false, fmt.Errorf("find unresolved location: %w", err)
	}
	return doc.toDomain(), true, nil
}

// ApplyGeocode stores the outcome's point, bounding box and raw result and
// marks the location completed.
func (s *LocationStore) ApplyGeocode(ctx context.Context, code domain.Code, outcome domain.GeocodeOutcome) error {
	return s.update(ctx, code, bson.D{
		{Key: "coord", Value: newPointDoc(outcome.Point)},
		{Key: "boundingBox", Value: newPolygonDoc(outcome.BoundingBox)},
		{Key: "osmresult", Value: newGeocodeDoc(outcome.Result)},
		{Key: "status", Value: int(domain.StatusCompleted)},
	})
}

// MarkRequested records a failed geocode attempt.
func (s *LocationStore) MarkRequested(ctx context.Context, code domain.Code) error {
	return s.update(ctx, code, bson.D{{Key: "status", Value: int(domain.StatusRequested)}})
}

func (s *LocationStore) update(ctx context.Context, code domain.Code, set bson.D) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "psgc", Value: string(code)}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("update location %s: %w", code, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update location %s: %w", code, mongo.ErrNoDocuments)
	}
	return nil
}
