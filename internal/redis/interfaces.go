package redis

import (
	"context"
	"time"
)

// LocationStoreInterface defines the interface for the ambulance geo index.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, ambulanceID string, lat, lng float64) error
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]AmbulanceLocation, error)
	RemoveLocation(ctx context.Context, ambulanceID string) error
}

// CacheStoreInterface defines the interface for geocode result caching.
type CacheStoreInterface interface {
	GetGeocode(ctx context.Context, address string) (*CachedPoint, error)
	SetGeocode(ctx context.Context, address string, p CachedPoint) error
}

// LockStoreInterface defines the interface for the cleanup sweep lock.
type LockStoreInterface interface {
	AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ CacheStoreInterface    = (*CacheStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
