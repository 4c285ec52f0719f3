package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const countryName = "Philippines"

// regionShortRe captures the parenthesized short form of a PSA region name,
// e.g. "Region IV-A (CALABARZON)" -> "CALABARZON".
var regionShortRe = regexp.MustCompile(`\(([^)]+)\)`)

// LocationLookup fetches a stored location by exact code. ok is false when
// no location with that code exists.
type LocationLookup interface {
	LookupLocation(ctx context.Context, code Code) (rec LocationRecord, ok bool, err error)
}

// LookupFunc adapts a function to LocationLookup.
type LookupFunc func(ctx context.Context, code Code) (LocationRecord, bool, error)

func (f LookupFunc) LookupLocation(ctx context.Context, code Code) (LocationRecord, bool, error) {
	return f(ctx, code)
}

// ExtractRegionName shortens "Region ..." names to their parenthesized part.
// Any other name is returned unchanged.
func ExtractRegionName(name string) string {
	if !strings.HasPrefix(name, "Region") {
		return name
	}
	if m := regionShortRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// ResolveLongName derives the fully-qualified name of a location. Regions
// need no lookup. Other levels take the long name of the first candidate
// parent present in the store; if none is present the result is an
// *UnresolvedParentError.
func ResolveLongName(ctx context.Context, code Code, name string, lookup LocationLookup) (string, error) {
	if code.Level() == LevelRegion {
		return ExtractRegionName(name) + ", " + countryName, nil
	}

	parent, ok, err := FirstParent(ctx, code, lookup)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &UnresolvedParentError{Code: code}
	}
	return name + ", " + parent.LongName, nil
}

// ResolveRecord fills rec.LongName unless it is already set, in which case
// it does nothing.
func ResolveRecord(ctx context.Context, rec *LocationRecord, lookup LocationLookup) error {
	if rec.LongName != "" {
		return nil
	}
	longName, err := ResolveLongName(ctx, rec.Code, rec.Name, lookup)
	if err != nil {
		return err
	}
	return rec.SetLongName(longName)
}

// FirstParent returns the first candidate parent of code present in the
// store, probing in the order given by [Code.ParentCodes].
func FirstParent(ctx context.Context, code Code, lookup LocationLookup) (LocationRecord, bool, error) {
	return firstParentMatching(ctx, code, lookup, func(LocationRecord) bool { return true })
}

func firstParentMatching(ctx context.Context, code Code, lookup LocationLookup, accept func(LocationRecord) bool) (LocationRecord, bool, error) {
	for _, candidate := range code.ParentCodes() {
		rec, ok, err := lookup.LookupLocation(ctx, candidate)
		if err != nil {
			return LocationRecord{}, false, fmt.Errorf("lookup parent %s of %s: %w", candidate, code, err)
		}
		if ok && accept(rec) {
			return rec, true, nil
		}
	}
	return LocationRecord{}, false, nil
}
