package domain

import (
	"context"
	"fmt"
)

// Geocode source labels recorded on a GeocodeOutcome.
const (
	GeoSourceSearch = "search"
	GeoSourceParent = "parent"
)

// GeocodeOutcome is the geocode to store on a location.
type GeocodeOutcome struct {
	Result      GeocodeResult
	Point       GeoPoint
	BoundingBox BoundingBox
	Source      string
	ParentCode  Code // set when Source is GeoSourceParent
}

// GeocodeLocation searches for rec by its long name. Without a hit it falls
// back to the stored geocode of the first candidate parent that has one.
// A region without a hit returns a *GeocodeExhaustedError.
func GeocodeLocation(ctx context.Context, rec LocationRecord, geocoder Geocoder, lookup LocationLookup) (GeocodeOutcome, error) {
	if rec.LongName == "" {
		return GeocodeOutcome{}, fmt.Errorf("geocode %s: long name not resolved", rec.Code)
	}

	result, ok, err := geocoder.Search(ctx, rec.LongName)
	if err != nil {
		return GeocodeOutcome{}, fmt.Errorf("geocode %s: %w", rec.Code, err)
	}
	if ok {
		return outcomeFrom(result, GeoSourceSearch, "")
	}

	parent, ok, err := firstParentMatching(ctx, rec.Code, lookup, func(p LocationRecord) bool {
		return p.Geocode != nil
	})
	if err != nil {
		return GeocodeOutcome{}, err
	}
	if !ok {
		return GeocodeOutcome{}, &GeocodeExhaustedError{Code: rec.Code}
	}
	return outcomeFrom(*parent.Geocode, GeoSourceParent, parent.Code)
}

func outcomeFrom(result GeocodeResult, source string, parent Code) (GeocodeOutcome, error) {
	point, err := result.Point()
	if err != nil {
		return GeocodeOutcome{}, err
	}
	bbox, err := result.Bounds()
	if err != nil {
		return GeocodeOutcome{}, err
	}
	return GeocodeOutcome{
		Result:      result,
		Point:       point,
		BoundingBox: bbox,
		Source:      source,
		ParentCode:  parent,
	}, nil
}
