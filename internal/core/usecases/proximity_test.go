package usecases_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/core/usecases"
	"github.com/samirrijal/geomatch/internal/pkg/geospatial"
)

var origin = domain.GeoPoint{Lat: 12.97, Lng: 77.59}

func plumber() domain.Candidate {
	return domain.Candidate{
		ID: "w1", Kind: domain.KindWorker, Name: "Ravi", Category: "Plumber",
		Location: domain.GeoPoint{Lat: 12.98, Lng: 77.60}, Available: true,
	}
}

func TestFilterNearby_CategoryMatch(t *testing.T) {
	got := usecases.FilterNearby(origin, []domain.Candidate{plumber()}, 10, "Plumber")
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Distance == nil {
		t.Fatal("expected distance to be attached")
	}
	if d := *got[0].Distance; d < 1.4 || d > 1.6 {
		t.Errorf("expected distance ~1.5 km, got %f", d)
	}
}

func TestFilterNearby_CategoryMismatch(t *testing.T) {
	got := usecases.FilterNearby(origin, []domain.Candidate{plumber()}, 10, "Electrician")
	if got == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestFilterNearby_NoCategoryMatchesAll(t *testing.T) {
	electrician := plumber()
	electrician.ID = "w2"
	electrician.Category = "Electrician"

	got := usecases.FilterNearby(origin, []domain.Candidate{plumber(), electrician}, 10, "")
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
}

func TestFilterNearby_InclusiveBoundary(t *testing.T) {
	c := plumber()
	radius := geospatial.Haversine(origin.Lat, origin.Lng, c.Location.Lat, c.Location.Lng)

	if got := usecases.FilterNearby(origin, []domain.Candidate{c}, radius, ""); len(got) != 1 {
		t.Errorf("candidate exactly at the radius must be included")
	}
	if got := usecases.FilterNearby(origin, []domain.Candidate{c}, radius-1e-9, ""); len(got) != 0 {
		t.Errorf("candidate just outside the radius must be excluded")
	}
}

func TestFilterNearby_UnavailableNeverReturned(t *testing.T) {
	c := plumber()
	c.Location = origin
	c.Available = false

	if got := usecases.FilterNearby(origin, []domain.Candidate{c}, 1000, ""); len(got) != 0 {
		t.Errorf("unavailable candidate returned")
	}
}

func TestFilterNearby_OutsideRadius(t *testing.T) {
	far := plumber()
	far.Location = domain.GeoPoint{Lat: 13.5, Lng: 78.5} // ~115 km away

	if got := usecases.FilterNearby(origin, []domain.Candidate{far}, 10, ""); len(got) != 0 {
		t.Errorf("far candidate returned")
	}
	if got := usecases.FilterNearby(origin, []domain.Candidate{far}, 200, ""); len(got) != 1 {
		t.Errorf("far candidate should be inside a 200 km radius")
	}
}

func TestFilterNearby_PreservesOrderAndIsIdempotent(t *testing.T) {
	a := plumber()
	a.ID, a.Location = "a", domain.GeoPoint{Lat: 13.02, Lng: 77.62} // farther first
	b := plumber()
	b.ID, b.Location = "b", domain.GeoPoint{Lat: 12.971, Lng: 77.591}
	c := plumber()
	c.ID, c.Location = "c", domain.GeoPoint{Lat: 12.99, Lng: 77.58}
	input := []domain.Candidate{a, b, c}

	first := usecases.FilterNearby(origin, input, 10, "")
	second := usecases.FilterNearby(origin, input, 10, "")

	ids := func(cs []domain.Candidate) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(first)); diff != "" {
		t.Errorf("order changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated filter differs (-first +second):\n%s", diff)
	}
	for _, c := range input {
		if c.Distance != nil {
			t.Errorf("input candidate %s was mutated", c.ID)
		}
	}
}

func TestFilterNearby_EmptyInput(t *testing.T) {
	got := usecases.FilterNearby(origin, nil, 10, "Plumber")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}
