package ports

import (
	"context"
	"time"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// Geocoder resolves a free-text address into coordinates.
// It returns domain.ErrGeocodeNotFound for zero results and wraps transport
// failures in domain.ErrUpstreamUnavailable.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.GeoPoint, error)
}

// RouteProvider requests a walking route between two points.
// The returned payload is the provider's JSON, passed through untouched.
type RouteProvider interface {
	WalkingRoute(ctx context.Context, origin, destination domain.GeoPoint, departure time.Time) ([]byte, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishMatch(ctx context.Context, event *domain.MatchEvent) error
	PublishSnapshotRefreshed(ctx context.Context, kind domain.Kind, count int) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeCandidateChanges(ctx context.Context, handler func(ctx context.Context, kind domain.Kind) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
