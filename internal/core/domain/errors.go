package domain

import "errors"

var (
	// ErrBadRequest marks a required field that is absent or malformed in an inbound query.
	ErrBadRequest = errors.New("bad request")

	// ErrGeocodeNotFound is returned when the provider has no match for an address.
	ErrGeocodeNotFound = errors.New("geocode results not found")

	// ErrUpstreamUnavailable wraps network and HTTP failures talking to the candidate
	// source or the maps provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRouteNotFound is returned when the routing provider has no route.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMalformedRecord marks a candidate record missing a required field.
	ErrMalformedRecord = errors.New("malformed upstream record")

	// ErrUnknownKind is returned for a candidate kind other than worker, architect or merchant.
	ErrUnknownKind = errors.New("unknown candidate kind")
)
