package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/core/usecases"
)

func TestNavigationService_Navigate_FromStartPoint(t *testing.T) {
	geo := newMockGeocoder()
	geo.points["Cubbon Park, Bengaluru"] = domain.GeoPoint{Lat: 12.98, Lng: 77.60}

	var gotOrigin, gotDest domain.GeoPoint
	var gotDeparture time.Time
	routes := &mockRoutes{walkFn: func(ctx context.Context, o, d domain.GeoPoint, dep time.Time) ([]byte, error) {
		gotOrigin, gotDest, gotDeparture = o, d, dep
		return []byte(`[{"summary":"MG Rd"}]`), nil
	}}
	svc := usecases.NewNavigationService(geo, routes)

	start := domain.GeoPoint{Lat: 12.97, Lng: 77.59}
	res, err := svc.Navigate(context.Background(), domain.RouteQuery{
		StartPoint: &start, EndAddress: "Cubbon Park, Bengaluru",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DistanceKm < 1.4 || res.DistanceKm > 1.6 {
		t.Errorf("expected ~1.5 km, got %f", res.DistanceKm)
	}
	if gotOrigin != start || gotDest != (domain.GeoPoint{Lat: 12.98, Lng: 77.60}) {
		t.Errorf("route called with %v -> %v", gotOrigin, gotDest)
	}
	if gotDeparture.IsZero() {
		t.Error("expected a departure time")
	}
	if string(res.Directions) != `[{"summary":"MG Rd"}]` {
		t.Errorf("directions not passed through: %s", res.Directions)
	}
	if geo.callCount() != 1 {
		t.Errorf("only the end point should be geocoded, got %d calls", geo.callCount())
	}
}

func TestNavigationService_Navigate_FromStartAddress(t *testing.T) {
	geo := newMockGeocoder()
	geo.points["Home"] = domain.GeoPoint{Lat: 12.97, Lng: 77.59}
	geo.points["Work"] = domain.GeoPoint{Lat: 12.97, Lng: 77.59}
	svc := usecases.NewNavigationService(geo, &mockRoutes{})

	res, err := svc.Navigate(context.Background(), domain.RouteQuery{StartAddress: "Home", EndAddress: "Work"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DistanceKm != 0 {
		t.Errorf("expected zero distance, got %f", res.DistanceKm)
	}
}

func TestNavigationService_Navigate_BadRequests(t *testing.T) {
	svc := usecases.NewNavigationService(newMockGeocoder(), &mockRoutes{})
	outOfRange := domain.GeoPoint{Lat: 91, Lng: 0}

	tests := []struct {
		name  string
		query domain.RouteQuery
	}{
		{"missing end", domain.RouteQuery{StartAddress: "Home"}},
		{"missing start", domain.RouteQuery{EndAddress: "Work"}},
		{"invalid start point", domain.RouteQuery{StartPoint: &outOfRange, EndAddress: "Work"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Navigate(context.Background(), tt.query)
			if !errors.Is(err, domain.ErrBadRequest) {
				t.Errorf("expected ErrBadRequest, got %v", err)
			}
		})
	}
}

func TestNavigationService_Navigate_EndNotFound(t *testing.T) {
	called := false
	routes := &mockRoutes{walkFn: func(ctx context.Context, o, d domain.GeoPoint, dep time.Time) ([]byte, error) {
		called = true
		return nil, nil
	}}
	svc := usecases.NewNavigationService(newMockGeocoder(), routes)
	start := domain.GeoPoint{Lat: 12.97, Lng: 77.59}

	_, err := svc.Navigate(context.Background(), domain.RouteQuery{StartPoint: &start, EndAddress: "Atlantis"})
	if !errors.Is(err, domain.ErrGeocodeNotFound) {
		t.Fatalf("expected ErrGeocodeNotFound, got %v", err)
	}
	if called {
		t.Error("routing must not be called when the end point is unknown")
	}
}

func TestNavigationService_Navigate_RouteErrors(t *testing.T) {
	geo := newMockGeocoder()
	geo.points["Island"] = domain.GeoPoint{Lat: 10, Lng: 10}
	start := domain.GeoPoint{Lat: 12.97, Lng: 77.59}

	for _, want := range []error{domain.ErrRouteNotFound, domain.ErrUpstreamUnavailable} {
		routes := &mockRoutes{walkFn: func(ctx context.Context, o, d domain.GeoPoint, dep time.Time) ([]byte, error) {
			return nil, want
		}}
		svc := usecases.NewNavigationService(geo, routes)

		_, err := svc.Navigate(context.Background(), domain.RouteQuery{StartPoint: &start, EndAddress: "Island"})
		if !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	}
}
