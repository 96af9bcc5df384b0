package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the population a candidate belongs to.
type Kind string

const (
	KindWorker    Kind = "worker"
	KindArchitect Kind = "architect"
	KindMerchant  Kind = "merchant"
)

// Kinds lists every supported kind in a stable order.
var Kinds = []Kind{KindWorker, KindArchitect, KindMerchant}

// ParseKind accepts the singular or plural form, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "worker", "workers":
		return KindWorker, nil
	case "architect", "architects":
		return KindArchitect, nil
	case "merchant", "merchants":
		return KindMerchant, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// RadiusKm is the fixed "nearby" threshold for the kind.
func (k Kind) RadiusKm() float64 {
	if k == KindArchitect {
		return 50
	}
	return 10
}

// Plural is used to build response keys such as "nearby_workers".
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Address is a structured postal address.
type Address struct {
	Line    string `json:"addressLine"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// String joins the non-empty parts with ", " for geocoding.
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Line, a.City, a.State, a.Pincode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// IsZero reports whether every part is blank.
func (a Address) IsZero() bool {
	return a.String() == ""
}

// Candidate is a service provider eligible for proximity matching.
type Candidate struct {
	ID            string   `json:"id"`
	Kind          Kind     `json:"kind"`
	Name          string   `json:"name"`
	Category      string   `json:"service_category"`
	Location      GeoPoint `json:"location"`
	RatePerHour   float64  `json:"rate_per_hour"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Address       Address  `json:"address"`
	Experience    *float64 `json:"experience,omitempty"`     // architects only, 0 when unknown
	ProfileImage  *string  `json:"profile_image,omitempty"`  // architects only
	OverallRating *float64 `json:"overall_rating,omitempty"` // architects only, 0 when unknown
	BusinessName  string   `json:"business_name,omitempty"`
	Available     bool     `json:"available"`
	Distance      *float64 `json:"distance,omitempty"` // computed field, km
}

// Query is an inbound proximity request.
type Query struct {
	Kind     Kind   `json:"kind"`
	Location string `json:"location"`
	Category string `json:"service_category,omitempty"`
}

// RouteQuery is an inbound navigation request. Exactly one of StartPoint and
// StartAddress is used; StartPoint wins when both are set.
type RouteQuery struct {
	StartPoint   *GeoPoint `json:"start_point,omitempty"`
	StartAddress string    `json:"start_address,omitempty"`
	EndAddress   string    `json:"end_point"`
}

// RouteResult carries the direct distance and the provider's walking route payload.
type RouteResult struct {
	DistanceKm float64  `json:"distance"`
	Start      GeoPoint `json:"start"`
	End        GeoPoint `json:"end"`
	Directions []byte   `json:"-"` // opaque provider JSON
}

// MatchEvent is published after every successful proximity query.
type MatchEvent struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Origin   GeoPoint  `json:"origin"`
	Category string    `json:"service_category,omitempty"`
	Results  int       `json:"results"`
	At       time.Time `json:"at"`
}

// SourceStats holds row counts for a database-backed candidate source.
type SourceStats struct {
	Kind      Kind   `json:"kind"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	LastSeed  string `json:"last_seed,omitempty"`
}
