package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/pkg/metrics"
)

// Options configures the Maps Platform client.
type Options struct {
	APIKey  string
	BaseURL string // empty uses the public endpoint
	Timeout time.Duration
	QPS     int // client-side rate limit, 0 keeps the library default
}

// Client implements ports.Geocoder and ports.RouteProvider on the Google Maps
// Geocoding and Directions APIs.
type Client struct {
	maps *maps.Client
	now  func() time.Time
}

// New builds a Client. The API key is required.
func New(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(opts.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(opts.BaseURL))
	}
	if opts.QPS > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(opts.QPS))
	}

	c, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &Client{maps: c, now: time.Now}, nil
}

// Geocode resolves a free-text address to the first result's coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeoPoint, error) {
	results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		err = classify(err, domain.ErrGeocodeNotFound)
		metrics.GeocodeRequests.WithLabelValues(outcome(err)).Inc()
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: %w", address, domain.ErrGeocodeNotFound)
	}

	metrics.GeocodeRequests.WithLabelValues("ok").Inc()
	loc := results[0].Geometry.Location
	return domain.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// WalkingRoute requests walking directions and returns the route list as JSON.
// Departures not in the future are sent as "now".
func (c *Client) WalkingRoute(ctx context.Context, origin, destination domain.GeoPoint, departure time.Time) ([]byte, error) {
	req := &maps.DirectionsRequest{
		Origin:        latLng(origin),
		Destination:   latLng(destination),
		Mode:          maps.TravelModeWalking,
		DepartureTime: departureParam(departure, c.now()),
	}

	routes, _, err := c.maps.Directions(ctx, req)
	if err != nil {
		err = classify(err, domain.ErrRouteNotFound)
		metrics.RouteRequests.WithLabelValues(outcome(err)).Inc()
		return nil, fmt.Errorf("directions: %w", err)
	}
	if len(routes) == 0 {
		metrics.RouteRequests.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("directions: %w", domain.ErrRouteNotFound)
	}

	data, err := json.Marshal(routes)
	if err != nil {
		return nil, fmt.Errorf("encode routes: %w", err)
	}
	metrics.RouteRequests.WithLabelValues("ok").Inc()
	return data, nil
}

func latLng(p domain.GeoPoint) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

func departureParam(departure, now time.Time) string {
	if departure.After(now.Add(time.Minute)) {
		return strconv.FormatInt(departure.Unix(), 10)
	}
	return "now"
}

// classify maps a provider error. The client reports non-OK statuses as
// "maps: STATUS - message".
func classify(err error, notFound error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ZERO_RESULTS"), strings.Contains(msg, "NOT_FOUND"):
		return fmt.Errorf("%w: %s", notFound, msg)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
}

func outcome(err error) string {
	if errors.Is(err, domain.ErrGeocodeNotFound) || errors.Is(err, domain.ErrRouteNotFound) {
		return "not_found"
	}
	return "error"
}
