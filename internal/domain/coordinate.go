package domain

import (
	"errors"
	"fmt"
	"math"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// kmPerDegreeLat is the length of one degree of latitude.
const kmPerDegreeLat = 111.32

// ErrInvalidCoordinate is returned when a latitude or longitude is outside its
// valid range or is not a finite number.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports whether the coordinate lies within [-90,90] x [-180,180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

// Round returns the coordinate rounded to the given number of decimal places.
// Negative zero is normalized so that keys built from the result are stable.
func (c Coordinate) Round(places int) Coordinate {
	scale := math.Pow(10, float64(places))
	return Coordinate{
		Lat: roundTo(c.Lat, scale),
		Lon: roundTo(c.Lon, scale),
	}
}

func roundTo(v, scale float64) float64 {
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

// DistanceKm returns the great-circle distance between a and b using the
// haversine formula.
func DistanceKm(a, b Coordinate) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h slightly outside [0,1] near antipodes.
	h = math.Min(1, math.Max(0, h))
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Bounds is a latitude/longitude bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MinLon float64 `json:"min_lon" yaml:"min_lon"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
}

// Contains reports whether c lies inside the box, edges included.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// BoundsAround returns a box that contains every point within radiusKm of c.
// The box is clamped to valid latitude and longitude ranges; near the poles
// it widens to the full longitude range.
func BoundsAround(c Coordinate, radiusKm float64) Bounds {
	dLat := radiusKm / kmPerDegreeLat
	b := Bounds{
		MinLat: math.Max(c.Lat-dLat, -90),
		MaxLat: math.Min(c.Lat+dLat, 90),
		MinLon: -180,
		MaxLon: 180,
	}

	cosLat := math.Cos(toRadians(c.Lat))
	if cosLat > 1e-6 {
		dLon := radiusKm / (kmPerDegreeLat * cosLat)
		if dLon < 180 {
			b.MinLon = math.Max(c.Lon-dLon, -180)
			b.MaxLon = math.Min(c.Lon+dLon, 180)
		}
	}
	return b
}
