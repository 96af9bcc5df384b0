package geospatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_SamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(12.97, 77.59, 12.97, 77.59))
}

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm, tolerance      float64
	}{
		{"bengaluru short hop", 12.97, 77.59, 12.98, 77.60, 1.5, 0.1},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.05},
		{"paris to london", 48.8566, 2.3522, 51.5074, -0.1278, 343.5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(12.97, 77.59, 13.5, 78.1)
	b := Haversine(13.5, 78.1, 12.97, 77.59)
	assert.True(t, math.Abs(a-b) < 1e-9)
}

func TestWithin_Inclusive(t *testing.T) {
	assert.True(t, Within(10, 10))
	assert.True(t, Within(9.999, 10))
	assert.False(t, Within(10.0001, 10))
}
