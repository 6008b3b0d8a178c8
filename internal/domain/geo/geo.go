// Package geo holds the small geodesic helpers shared by labeling, measuring and splitting.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// MetersPerFoot is the international foot.
const MetersPerFoot = 0.3048

// meanEarthRadius is the IUGG mean radius in meters. Edge lengths use it; orb's
// haversine is computed on the equatorial orb.EarthRadius and rescaled.
const meanEarthRadius = 6371008.8

// Unit is a length unit for reported distances.
type Unit string

// Supported length units.
const (
	Feet   Unit = "feet"
	Meters Unit = "meters"
)

// ParseUnit validates a unit name. Empty input yields def.
func ParseUnit(s string, def Unit) (Unit, error) {
	switch Unit(s) {
	case "":
		return def, nil
	case Feet, Meters:
		return Unit(s), nil
	case "ft":
		return Feet, nil
	case "m":
		return Meters, nil
	default:
		return "", fmt.Errorf("unknown unit %q (want feet or meters)", s)
	}
}

// FromMeters converts a length in meters to u.
func (u Unit) FromMeters(m float64) float64 {
	if u == Feet {
		return m / MetersPerFoot
	}
	return m
}

// ToMeters converts a length expressed in u to meters.
func (u Unit) ToMeters(v float64) float64 {
	if u == Feet {
		return v * MetersPerFoot
	}
	return v
}

// Format renders a distance for a map label: 12.34' for feet, 12.34 m for meters.
func (u Unit) Format(v float64) string {
	if u == Feet {
		return fmt.Sprintf("%.2f'", v)
	}
	return fmt.Sprintf("%.2f m", v)
}

// Distance returns the great-circle distance in meters between two lon/lat points.
func Distance(a, b orb.Point) float64 {
	if a.Equal(b) {
		return 0
	}
	return orbgeo.DistanceHaversine(a, b) * (meanEarthRadius / orb.EarthRadius)
}

// PathLength sums the great-circle length of consecutive points, in meters.
func PathLength(pts []orb.Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// Midpoint returns the point halfway along the great circle from a to b.
func Midpoint(a, b orb.Point) orb.Point {
	if a.Equal(b) {
		return a
	}
	return orbgeo.Midpoint(a, b)
}

// TurnAngle returns the angle in degrees at vertex b formed by the vectors b->a and b->c,
// computed on raw lon/lat with the dot-product formula. 180 means a, b, c are collinear
// and b lies between them. A zero-length arm is treated as straight.
func TurnAngle(a, b, c orb.Point) float64 {
	bax, bay := a[0]-b[0], a[1]-b[1]
	bcx, bcy := c[0]-b[0], c[1]-b[1]

	magBA := math.Hypot(bax, bay)
	magBC := math.Hypot(bcx, bcy)
	if magBA == 0 || magBC == 0 {
		return 180
	}

	cos := (bax*bcx + bay*bcy) / (magBA * magBC)
	// floating noise can push |cos| slightly past 1
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// Rotation returns the screen rotation in degrees for text laid along a->b.
func Rotation(a, b orb.Point) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0]) * 180 / math.Pi
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// BoundArray flattens a bound to [minLon, minLat, maxLon, maxLat].
func BoundArray(b orb.Bound) [4]float64 {
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}
