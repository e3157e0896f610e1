package geocode

import (
	"context"

	internalRedis "dispatch/internal/redis"
)

// CachedGeocoder fronts another Geocoder with a Redis cache. Cache errors
// are treated as misses; the underlying provider remains authoritative.
type CachedGeocoder struct {
	inner Geocoder
	cache internalRedis.CacheStoreInterface
}

// NewCachedGeocoder creates a CachedGeocoder.
func NewCachedGeocoder(inner Geocoder, cache internalRedis.CacheStoreInterface) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: cache}
}

// Geocode resolves the address, consulting the cache first.
func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (Point, error) {
	if cached, err := g.cache.GetGeocode(ctx, address); err == nil && cached != nil {
		return Point{Lat: cached.Lat, Lng: cached.Lng}, nil
	}

	p, err := g.inner.Geocode(ctx, address)
	if err != nil {
		return Point{}, err
	}

	_ = g.cache.SetGeocode(ctx, address, internalRedis.CachedPoint{Lat: p.Lat, Lng: p.Lng})
	return p, nil
}
