package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/core/usecases"
)

const bengaluru = "MG Road, Bengaluru"

func newMatchFixture(records ...domain.CandidateRecord) (*usecases.MatchService, *mockGeocoder, *mockPublisher) {
	geo := newMockGeocoder()
	geo.points[bengaluru] = domain.GeoPoint{Lat: 12.97, Lng: 77.59}
	pub := &mockPublisher{}
	candidates := usecases.NewCandidateService(sourceOf(records...), geo, nil, nil, usecases.CandidateOptions{})
	return usecases.NewMatchService(geo, candidates, pub, false), geo, pub
}

func TestMatchService_Nearby_CategoryMatch(t *testing.T) {
	svc, _, pub := newMatchFixture(located("w1", "Ravi", "Plumber", 12.98, 77.60))

	got, err := svc.Nearby(context.Background(), domain.Query{
		Kind: domain.KindWorker, Location: bengaluru, Category: "Plumber",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "w1" {
		t.Fatalf("expected w1, got %+v", got)
	}
	if len(pub.matches) != 1 || pub.matches[0].Results != 1 || pub.matches[0].ID == "" {
		t.Errorf("expected a match event with 1 result, got %+v", pub.matches)
	}
}

func TestMatchService_Nearby_CategoryMismatchIsEmptyNotError(t *testing.T) {
	svc, _, _ := newMatchFixture(located("w1", "Ravi", "Plumber", 12.98, 77.60))

	got, err := svc.Nearby(context.Background(), domain.Query{
		Kind: domain.KindWorker, Location: bengaluru, Category: "Electrician",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}

func TestMatchService_Nearby_ArchitectRadius(t *testing.T) {
	// ~30 km north: outside the worker radius, inside the architect radius.
	rec := located("a1", "Meera", "", 13.24, 77.59)
	svc, _, _ := newMatchFixture(rec)

	arch, err := svc.Nearby(context.Background(), domain.Query{Kind: domain.KindArchitect, Location: bengaluru})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(arch) != 1 {
		t.Errorf("expected architect within 50 km, got %d", len(arch))
	}

	work, err := svc.Nearby(context.Background(), domain.Query{Kind: domain.KindWorker, Location: bengaluru})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(work) != 0 {
		t.Errorf("expected no worker within 10 km, got %d", len(work))
	}
}

func TestMatchService_Nearby_BadRequests(t *testing.T) {
	svc, geo, _ := newMatchFixture()

	tests := []struct {
		name  string
		query domain.Query
	}{
		{"missing location", domain.Query{Kind: domain.KindWorker}},
		{"blank location", domain.Query{Kind: domain.KindWorker, Location: "   "}},
		{"unknown kind", domain.Query{Kind: "plumber", Location: bengaluru}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Nearby(context.Background(), tt.query)
			if !errors.Is(err, domain.ErrBadRequest) {
				t.Errorf("expected ErrBadRequest, got %v", err)
			}
		})
	}
	if geo.callCount() != 0 {
		t.Errorf("bad requests must not reach the geocoder")
	}
}

func TestMatchService_Nearby_RequiredWorkerCategory(t *testing.T) {
	geo := newMockGeocoder()
	geo.points[bengaluru] = domain.GeoPoint{Lat: 12.97, Lng: 77.59}
	candidates := usecases.NewCandidateService(sourceOf(), geo, nil, nil, usecases.CandidateOptions{})
	svc := usecases.NewMatchService(geo, candidates, nil, true)

	_, err := svc.Nearby(context.Background(), domain.Query{Kind: domain.KindWorker, Location: bengaluru})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}

	// Other kinds ignore the policy.
	if _, err := svc.Nearby(context.Background(), domain.Query{Kind: domain.KindMerchant, Location: bengaluru}); err != nil {
		t.Errorf("unexpected error for merchants: %v", err)
	}
}

func TestMatchService_Nearby_GeocodeNotFound(t *testing.T) {
	svc, _, pub := newMatchFixture(located("w1", "Ravi", "Plumber", 12.98, 77.60))

	_, err := svc.Nearby(context.Background(), domain.Query{Kind: domain.KindWorker, Location: "Atlantis"})
	if !errors.Is(err, domain.ErrGeocodeNotFound) {
		t.Fatalf("expected ErrGeocodeNotFound, got %v", err)
	}
	if len(pub.matches) != 0 {
		t.Errorf("no event expected when the origin cannot be geocoded")
	}
}

func TestMatchService_Nearby_UpstreamFailureIsEmpty(t *testing.T) {
	geo := newMockGeocoder()
	geo.points[bengaluru] = domain.GeoPoint{Lat: 12.97, Lng: 77.59}
	src := &mockSource{fetchFn: func(ctx context.Context, kind domain.Kind) ([]domain.CandidateRecord, error) {
		return nil, domain.ErrUpstreamUnavailable
	}}
	candidates := usecases.NewCandidateService(src, geo, nil, nil, usecases.CandidateOptions{})
	svc := usecases.NewMatchService(geo, candidates, nil, false)

	got, err := svc.Nearby(context.Background(), domain.Query{Kind: domain.KindWorker, Location: bengaluru})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}

func TestMatchService_Nearby_PublishErrorIgnored(t *testing.T) {
	geo := newMockGeocoder()
	geo.points[bengaluru] = domain.GeoPoint{Lat: 12.97, Lng: 77.59}
	pub := &mockPublisher{err: errors.New("nats: no responders")}
	candidates := usecases.NewCandidateService(sourceOf(located("w1", "Ravi", "Plumber", 12.98, 77.60)),
		geo, nil, nil, usecases.CandidateOptions{})
	svc := usecases.NewMatchService(geo, candidates, pub, false)

	got, err := svc.Nearby(context.Background(), domain.Query{Kind: domain.KindWorker, Location: bengaluru})
	if err != nil {
		t.Fatalf("publish errors must not fail the query: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 candidate, got %d", len(got))
	}
}
