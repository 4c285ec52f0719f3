package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/sismika/psgc-geo-etl/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EarthquakeStore titles bulletins stored by the collector.
type EarthquakeStore struct {
	coll  *mongo.Collection
	clock clockwork.Clock
}

// NewEarthquakeStore wraps the earthquake collection. A nil clock uses the
// real clock.
func NewEarthquakeStore(coll *mongo.Collection, clock clockwork.Clock) *EarthquakeStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &EarthquakeStore{coll: coll, clock: clock}
}

// untitledFilter matches documents whose title is null, missing or empty,
// that carry a coordinate and have not been claimed.
func untitledFilter() bson.D {
	return bson.D{
		{Key: "title", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}},
		{Key: "coord", Value: bson.D{{Key: "$exists", Value: true}}},
		{Key: "titledAt", Value: bson.D{{Key: "$exists", Value: false}}},
	}
}

func (s *EarthquakeStore) claimUpdate() bson.D {
	return bson.D{{Key: "$set", Value: bson.D{{Key: "titledAt", Value: s.clock.Now().UTC()}}}}
}

// ClaimUntitled returns one untitled earthquake that has not been attempted
// yet and stamps it so later calls move on even if titling fails. A claimed
// document whose coordinate is unusable is returned with ok set and an error
// wrapping domain.ErrMissingCoordinates.
func (s *EarthquakeStore) ClaimUntitled(ctx context.Context) (domain.Earthquake, bool, error) {
	var doc earthquakeDoc
	err := s.coll.FindOneAndUpdate(ctx, untitledFilter(), s.claimUpdate(),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Earthquake{}, false, nil
	}
	if err != nil {
		return domain.Earthquake{}, false, fmt.Errorf("claim untitled earthquake: %w", err)
	}
	eq, err := doc.toDomain()
	return eq, true, err
}

// SaveAttribution writes the title and attribution fields of eq.
func (s *EarthquakeStore) SaveAttribution(ctx context.Context, eq domain.Earthquake) error {
	id, err := primitive.ObjectIDFromHex(eq.ID)
	if err != nil {
		return fmt.Errorf("earthquake id %q: %w", eq.ID, err)
	}
	set := bson.D{
		{Key: "title", Value: eq.Title},
		{Key: "nearestLocation", Value: eq.NearestLocation},
		{Key: "distanceKm", Value: eq.DistanceKm},
		{Key: "bearing", Value: eq.Bearing},
		{Key: "titleSource", Value: eq.TitleSource},
	}
	res, err := s.coll.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("save earthquake %s: %w", eq.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("save earthquake %s: %w", eq.ID, mongo.ErrNoDocuments)
	}
	return nil
}
