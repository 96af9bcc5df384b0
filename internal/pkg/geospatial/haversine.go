package geospatial

import "math"

// EarthRadiusKm is the mean Earth radius used for the spherical approximation.
const EarthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in kilometres between two points.
// It treats the Earth as a sphere, so results drift from geodesic distance by up to
// about 0.5% over long ranges; at city and regional scale the error is negligible.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Within reports whether the distance is inside the radius. The threshold is inclusive.
func Within(distanceKm, radiusKm float64) bool {
	return distanceKm <= radiusKm
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
