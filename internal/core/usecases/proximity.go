package usecases

import (
	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/pkg/geospatial"
)

// FilterNearby keeps the available candidates within radiusKm of origin and, when
// category is non-empty, with exactly that category. Each retained candidate is a
// copy carrying its distance in km. Input order is preserved; nothing is sorted.
func FilterNearby(origin domain.GeoPoint, candidates []domain.Candidate, radiusKm float64, category string) []domain.Candidate {
	nearby := make([]domain.Candidate, 0)
	for _, c := range candidates {
		if !c.Available {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		d := geospatial.Haversine(origin.Lat, origin.Lng, c.Location.Lat, c.Location.Lng)
		if !geospatial.Within(d, radiusKm) {
			continue
		}
		c.Distance = &d
		nearby = append(nearby, c)
	}
	return nearby
}
