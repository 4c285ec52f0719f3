package domain

import (
	"math"
	"strconv"
)

// EarthRadiusMeters is the mean radius used for great-circle distances.
const EarthRadiusMeters = 6371e3

// CompassLabels are the 16 direction names in 22.5° sectors. Index 0 is
// "South" and the table runs clockwise from there.
var CompassLabels = [16]string{
	"South", "South-South-West", "South-West", "West-South-West",
	"West", "West-North-West", "North-West", "North-North-West",
	"North", "North-North-East", "North-East", "East-North-East",
	"East", "East-South-East", "South-East", "South-South-East",
}

const sectorDegrees = 360.0 / float64(len(CompassLabels))

// DistanceMeters returns the haversine distance between a and b.
func DistanceMeters(a, b GeoPoint) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// InitialBearingDegrees returns the forward azimuth at from of the
// great-circle path to to, in [0, 360).
func InitialBearingDegrees(from, to GeoPoint) float64 {
	lat1 := radians(from.Lat)
	lat2 := radians(to.Lat)
	dLon := radians(to.Lon - from.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return normalizeDegrees(degrees(math.Atan2(y, x)))
}

// BearingToCompassLabel maps any bearing, including negative or
// multi-turn values, to its compass sector label.
func BearingToCompassLabel(bearing float64) string {
	idx := int(math.Round(normalizeDegrees(bearing)/sectorDegrees)) % len(CompassLabels)
	return CompassLabels[idx]
}

// FormatSignificant renders v rounded to digits significant figures in
// fixed notation, keeping trailing zeros: 11.119 → "11", 1 → "1.0",
// 0.1234 → "0.12", 123.4 → "120".
func FormatSignificant(v float64, digits int) string {
	if digits < 1 {
		digits = 1
	}
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', digits-1, 64)
	}

	// Exponent after rounding, so 9.96 → "10" rather than "9.96".
	sci := strconv.FormatFloat(v, 'e', digits-1, 64)
	exp := 0
	for i := len(sci) - 1; i >= 0; i-- {
		if sci[i] == 'e' {
			exp, _ = strconv.Atoi(sci[i+1:])
			break
		}
	}

	decimals := digits - 1 - exp
	if decimals >= 0 {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
	scale := math.Pow(10, float64(-decimals))
	return strconv.FormatFloat(math.Round(v/scale)*scale, 'f', 0, 64)
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod of a tiny negative value can round back up to 360.
	if d >= 360 {
		d = 0
	}
	return d
}

func radians(d float64) float64 { return d * math.Pi / 180 }

func degrees(r float64) float64 { return r * 180 / math.Pi }
