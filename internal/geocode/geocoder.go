// Package geocode wraps the external geocoding provider behind a small
// interface so booking flows can be tested without network access.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// ErrNoResults is returned when the provider cannot resolve an address.
var ErrNoResults = errors.New("address could not be geocoded")

// Upstream lookups are bounded so a hung provider cannot stall a booking
// request indefinitely.
const lookupTimeout = 5 * time.Second

// Point is a resolved WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// Geocoder resolves a free-text address to a coordinate pair.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, error)
}

// DisabledGeocoder is used when no API key is configured. Every lookup
// fails, so bookings by address are refused until a key is provided.
type DisabledGeocoder struct{}

// Geocode always reports that geocoding is unavailable.
func (DisabledGeocoder) Geocode(ctx context.Context, address string) (Point, error) {
	return Point{}, errors.New("geocoding is not configured")
}

// GoogleGeocoder resolves addresses via the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a GoogleGeocoder with the given API key.
func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

// Geocode resolves the address, taking the first candidate the provider
// returns.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (Point, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return Point{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return Point{}, ErrNoResults
	}

	loc := results[0].Geometry.Location
	return Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
