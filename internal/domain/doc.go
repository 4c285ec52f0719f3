// Package domain models Philippine Standard Geographic Code (PSGC) locations
// and the earthquake events attributed to them.
//
// # Data Source
//
// Locations originate from the PSA quarterly PSGC publication datafile, one
// CSV row per region, province, city/municipality and barangay. The ingest
// job derives a fully-qualified long name for every row, and the geocode job
// resolves coordinates through the Nominatim search API. Earthquake events
// arrive from the bulletin collector on a Kafka topic (or are already stored)
// and are titled relative to the nearest geocoded location.
//
// # PSGC Code Conventions
//
// Codes are 10 numeric characters. The hierarchy level is encoded by the
// length of the trailing zero run:
//
//	1300000000  region        (≥ 8 trailing zeros)
//	1380600000  province      (≥ 5)
//	1380601000  municipality  (≥ 3)
//	1380601001  barangay      (otherwise)
//
// A parent code is obtained by keeping the leading 2, 5 or 7 digits and
// zero-filling the rest. Not every level exists for every code (highly
// urbanized cities sit directly under a region), so parents are probed in
// order, most specific first. See [Code.ParentCodes].
//
// Long names:
//
//	"<name>, <parent long name>"  →  e.g. "Tondo I/II, City of Manila, NCR, Philippines"
//	Regions are suffixed with ", Philippines". PSA region names of the form
//	"Region IV-A (CALABARZON)" are shortened to the parenthesized form.
//
// # Relative Location Format
//
//	"<km> <compass> of <long name>"  →  e.g. "12km North-East of Bogo, Cebu, Central Visayas, Philippines"
//	Distance is the great-circle distance in kilometres to 2 significant
//	figures. The compass label is one of 16 sectors of 22.5° from the table
//	in [CompassLabels], which starts at "South" for index 0.
//
// # Geocoding Fallback
//
// When Nominatim has no hit for a long name, the stored geocode of the
// nearest ancestor is reused, following the same candidate order as name
// resolution. A region with no hit cannot fall back further.
package domain
