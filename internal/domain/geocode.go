package domain

import (
	"fmt"
	"math"
)

// PlacePrecision is the number of decimal places used to bucket coordinates
// for place lookups (about 11 m at the equator).
const PlacePrecision = 4

// PlaceKey returns the cache key for c: the coordinate rounded to
// PlacePrecision decimal places.
func PlaceKey(c Coordinate) string {
	r := c.Round(PlacePrecision)
	return fmt.Sprintf("%.4f,%.4f", r.Lat, r.Lon)
}

// FallbackPlaceLabel derives a deterministic label from the rounded
// coordinate, e.g. "Area 19.0760°N, 72.8777°E". It has no external
// dependencies and always succeeds.
func FallbackPlaceLabel(c Coordinate) string {
	r := c.Round(PlacePrecision)
	ns, ew := "N", "E"
	if r.Lat < 0 {
		ns = "S"
	}
	if r.Lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("Area %.4f°%s, %.4f°%s", math.Abs(r.Lat), ns, math.Abs(r.Lon), ew)
}
