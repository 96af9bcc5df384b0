package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/core/ports"
	"github.com/samirrijal/geomatch/internal/pkg/geospatial"
)

// NavigationService proxies walking directions between a start point and an address.
type NavigationService struct {
	geocoder ports.Geocoder
	routes   ports.RouteProvider
	now      func() time.Time
}

// NewNavigationService creates a new NavigationService.
func NewNavigationService(geocoder ports.Geocoder, routes ports.RouteProvider) *NavigationService {
	return &NavigationService{geocoder: geocoder, routes: routes, now: time.Now}
}

// Navigate resolves both ends, computes the direct distance and fetches a walking route
// departing now.
func (s *NavigationService) Navigate(ctx context.Context, q domain.RouteQuery) (*domain.RouteResult, error) {
	if strings.TrimSpace(q.EndAddress) == "" {
		return nil, fmt.Errorf("%w: end_point is required", domain.ErrBadRequest)
	}

	ctx, span := tracer.Start(ctx, "NavigationService.Navigate")
	defer span.End()

	var start domain.GeoPoint
	switch {
	case q.StartPoint != nil:
		if !q.StartPoint.Valid() {
			return nil, fmt.Errorf("%w: start_point is out of range", domain.ErrBadRequest)
		}
		start = *q.StartPoint
	case strings.TrimSpace(q.StartAddress) != "":
		p, err := s.geocoder.Geocode(ctx, q.StartAddress)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("geocode start point: %w", err)
		}
		start = p
	default:
		return nil, fmt.Errorf("%w: start_point is required", domain.ErrBadRequest)
	}

	end, err := s.geocoder.Geocode(ctx, q.EndAddress)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("geocode end point: %w", err)
	}

	distance := geospatial.Haversine(start.Lat, start.Lng, end.Lat, end.Lng)

	directions, err := s.routes.WalkingRoute(ctx, start, end, s.now())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("walking route: %w", err)
	}

	return &domain.RouteResult{
		DistanceKm: distance,
		Start:      start,
		End:        end,
		Directions: directions,
	}, nil
}
