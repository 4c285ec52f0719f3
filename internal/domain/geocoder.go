package domain

import "context"

// Geocoder resolves a free-text place query to its best match.
type Geocoder interface {
	// Search returns the top hit for query. ok is false when the provider
	// has no match.
	Search(ctx context.Context, query string) (result GeocodeResult, ok bool, err error)
}
