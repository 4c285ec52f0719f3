package domain

import (
	"context"
	"fmt"
)

// ReferenceLocation is the nearest geocoded location returned by a
// NearestLocator.
type ReferenceLocation struct {
	Point    GeoPoint
	LongName string
}

// NearestLocator finds the geocoded location closest to a point. ok is false
// when no geocoded location exists.
type NearestLocator interface {
	NearestLocation(ctx context.Context, target GeoPoint) (ref ReferenceLocation, ok bool, err error)
}

// NearestFunc adapts a function to NearestLocator.
type NearestFunc func(ctx context.Context, target GeoPoint) (ReferenceLocation, bool, error)

func (f NearestFunc) NearestLocation(ctx context.Context, target GeoPoint) (ReferenceLocation, bool, error) {
	return f(ctx, target)
}

// Attribution is the relation between a target point and its nearest
// reference location.
type Attribution struct {
	Reference      ReferenceLocation
	DistanceMeters float64
	BearingDegrees float64
	Compass        string
}

// String renders "<km>km <compass> of <long name>".
func (a Attribution) String() string {
	return fmt.Sprintf("%skm %s of %s", FormatSignificant(a.DistanceMeters/1000, 2), a.Compass, a.Reference.LongName)
}

// Attribute queries nn once for the location nearest target and measures
// distance and bearing from that location to target.
func Attribute(ctx context.Context, target GeoPoint, nn NearestLocator) (Attribution, error) {
	ref, ok, err := nn.NearestLocation(ctx, target)
	if err != nil {
		return Attribution{}, fmt.Errorf("nearest location to %v,%v: %w", target.Lon, target.Lat, err)
	}
	if !ok {
		return Attribution{}, fmt.Errorf("nearest location to %v,%v: %w", target.Lon, target.Lat, ErrNoReferenceLocation)
	}

	bearing := InitialBearingDegrees(ref.Point, target)
	return Attribution{
		Reference:      ref,
		DistanceMeters: DistanceMeters(ref.Point, target),
		BearingDegrees: bearing,
		Compass:        BearingToCompassLabel(bearing),
	}, nil
}

// DescribeNearest returns the relative description of target, e.g.
// "12km North-East of Bogo, Cebu, Central Visayas, Philippines".
func DescribeNearest(ctx context.Context, target GeoPoint, nn NearestLocator) (string, error) {
	a, err := Attribute(ctx, target, nn)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}
