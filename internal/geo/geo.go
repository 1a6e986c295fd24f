// Package geo provides coordinate math shared by the places and navigation code.
package geo

import (
	"fmt"
	"math"

	"github.com/assistive-ai/digitalcane/internal/models"
)

const earthRadiusMeters = 6371000

// Haversine calculates the distance in meters between two points.
func Haversine(a, b models.Coordinate) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// DedupeKey builds a merge key from a place name and its coordinate rounded
// to 5 decimal degrees (roughly 1 m). Coordinates from different provider
// calls are not bit-comparable, so cross-call merges must round to a common
// precision instead of comparing floats.
func DedupeKey(name string, c models.Coordinate) string {
	return fmt.Sprintf("%s|%.5f|%.5f", name, c.Lat, c.Lng)
}

// CacheKey rounds a coordinate to 4 decimal degrees (roughly 11 m), coarse
// enough that small GPS jitter maps to the same cache slot.
func CacheKey(c models.Coordinate) string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lng)
}
