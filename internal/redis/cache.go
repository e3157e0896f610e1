package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Geocode results barely change; a long TTL keeps repeat bookings for the
// same addresses off the upstream provider.
const geocodeCacheTTL = 24 * time.Hour

const geocodeCachePrefix = "cache:geocode:"

// CachedPoint is a cached geocoding result.
type CachedPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CacheStore handles geocode result caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

func geocodeKey(address string) string {
	return geocodeCachePrefix + strings.ToLower(strings.TrimSpace(address))
}

// GetGeocode retrieves a cached geocoding result. A nil result with nil
// error is a cache miss.
func (s *CacheStore) GetGeocode(ctx context.Context, address string) (*CachedPoint, error) {
	data, err := s.client.Get(ctx, geocodeKey(address)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var p CachedPoint
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetGeocode stores a geocoding result.
func (s *CacheStore) SetGeocode(ctx context.Context, address string, p CachedPoint) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, geocodeKey(address), data, geocodeCacheTTL).Err()
}
