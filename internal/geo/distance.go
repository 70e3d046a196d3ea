package geo

import (
	"math"

	"github.com/golang/geo/s2"

	"evscout/internal/model"
)

// EarthRadiusKm is the Earth's mean radius, matching the haversine constant
// used by the remote API's nearby search.
const EarthRadiusKm = 6371.0

// Valid reports whether c is a usable coordinate pair: present, finite, and
// within the WGS84 latitude/longitude range.
func Valid(c *model.Coordinate) bool {
	if c == nil {
		return false
	}
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	if math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Distance returns the great-circle distance between a and b in kilometers.
// The second return value is false ("unavailable") when either coordinate is
// missing or invalid; callers must not use the distance in that case.
//
// Distance(a, b) == Distance(b, a), and identical points yield 0.
func Distance(a, b *model.Coordinate) (float64, bool) {
	if !Valid(a) || !Valid(b) {
		return 0, false
	}
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * EarthRadiusKm, true
}
