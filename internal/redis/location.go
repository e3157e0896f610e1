package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const ambulanceLocationKey = "ambulances:locations"

// AmbulanceLocation represents an ambulance's position in the geo index.
type AmbulanceLocation struct {
	AmbulanceID string
	Lat         float64
	Lng         float64
	DistanceKm  float64
}

// LocationStore mirrors ambulance positions into a Redis geo index so
// proximity queries don't scan the relational store. The database row
// remains the durable source of truth; this index is refreshed on every
// location publish.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores an ambulance's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, ambulanceID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, ambulanceLocationKey, &redis.GeoLocation{
		Name:      ambulanceID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearby returns ambulance IDs within the given radius in kilometres,
// nearest first.
func (s *LocationStore) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]AmbulanceLocation, error) {
	results, err := s.client.GeoRadius(ctx, ambulanceLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]AmbulanceLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, AmbulanceLocation{
			AmbulanceID: r.Name,
			Lat:         r.Latitude,
			Lng:         r.Longitude,
			DistanceKm:  r.Dist,
		})
	}

	return locations, nil
}

// RemoveLocation removes an ambulance from the geo index, e.g. when it goes
// offline.
func (s *LocationStore) RemoveLocation(ctx context.Context, ambulanceID string) error {
	return s.client.ZRem(ctx, ambulanceLocationKey, ambulanceID).Err()
}
