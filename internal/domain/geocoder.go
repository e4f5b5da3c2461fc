package domain

import "context"

// GeocodingResult contains place data returned by a reverse-geocoding provider.
type GeocodingResult struct {
	DisplayName string
	PlaceName   string
}

// ReverseGeocoder converts coordinates to place details.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c Coordinate) (GeocodingResult, error)
}

// PlaceResolver turns a coordinate into a human-readable label. Implementations
// never fail; they fall back to a label derived from the coordinate.
type PlaceResolver interface {
	ResolvePlaceName(ctx context.Context, c Coordinate) string
}
