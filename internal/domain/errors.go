package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReferenceLocation is returned when the nearest-location query finds
	// no geocoded location at all, typically because the reference set has not
	// been populated yet.
	ErrNoReferenceLocation = errors.New("no reference location")

	// ErrMissingCoordinates is returned for a stored earthquake without a
	// usable [lon, lat] coordinate.
	ErrMissingCoordinates = errors.New("earthquake has no coordinates")

	// ErrLongNameSet is returned when a long name is assigned twice.
	ErrLongNameSet = errors.New("long name already set")
)

// InvalidCodeError reports a code that is not exactly 10 digits.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid psgc code %q: want %d digits", e.Code, CodeLength)
}

// UnresolvedParentError reports that none of a code's candidate parents is
// in the store. The parent may simply not be ingested yet.
type UnresolvedParentError struct {
	Code Code
}

func (e *UnresolvedParentError) Error() string {
	return fmt.Sprintf("psgc %s: no parent location found", e.Code)
}

// GeocodeExhaustedError reports that neither the geocoder nor any ancestor
// could provide coordinates for a code.
type GeocodeExhaustedError struct {
	Code Code
}

func (e *GeocodeExhaustedError) Error() string {
	return fmt.Sprintf("psgc %s: no geocode result and no geocoded parent", e.Code)
}
