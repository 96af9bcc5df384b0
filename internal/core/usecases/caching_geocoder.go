package usecases

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/core/ports"
	"github.com/samirrijal/geomatch/internal/pkg/metrics"
)

// CachingGeocoder is a read-through cache in front of another Geocoder.
// Only successful lookups are cached.
type CachingGeocoder struct {
	next       ports.Geocoder
	cache      ports.CacheService
	ttlSeconds int
}

// NewCachingGeocoder wraps next. With a nil cache or a non-positive TTL every call goes to next.
func NewCachingGeocoder(next ports.Geocoder, cache ports.CacheService, ttlSeconds int) *CachingGeocoder {
	return &CachingGeocoder{next: next, cache: cache, ttlSeconds: ttlSeconds}
}

func geocodeKey(address string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// Geocode implements ports.Geocoder.
func (g *CachingGeocoder) Geocode(ctx context.Context, address string) (domain.GeoPoint, error) {
	if g.cache == nil || g.ttlSeconds <= 0 {
		return g.next.Geocode(ctx, address)
	}

	key := geocodeKey(address)
	if data, err := g.cache.Get(ctx, key); err == nil {
		var p domain.GeoPoint
		if err := json.Unmarshal(data, &p); err == nil {
			metrics.CacheHits.WithLabelValues("geocode").Inc()
			return p, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("geocode").Inc()

	p, err := g.next.Geocode(ctx, address)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	if data, err := json.Marshal(p); err == nil {
		_ = g.cache.Set(ctx, key, data, g.ttlSeconds)
	}
	return p, nil
}
