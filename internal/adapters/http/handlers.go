package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

type nearbyRequest struct {
	Location        string `json:"location"`
	ServiceCategory string `json:"service_category"`
}

type navigationRequest struct {
	StartPoint json.RawMessage `json:"start_point"`
	EndPoint   string          `json:"end_point"`
}

type navigationResponse struct {
	Distance   float64         `json:"distance"`
	Directions json.RawMessage `json:"directions"`
}

// decodeBody unmarshals a JSON object body regardless of the Content-Type header.
func decodeBody(c *fiber.Ctx, v interface{}) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 || body[0] != '{' {
		return errors.New("request body must be a JSON object")
	}
	return json.Unmarshal(body, v)
}

// NearbyHandler serves POST /nearby_<kind>s. The response key is nearby_<kind>s.
func NearbyHandler(deps *Dependencies, kind domain.Kind) fiber.Handler {
	key := "nearby_" + kind.Plural()

	return func(c *fiber.Ctx) error {
		var req nearbyRequest
		if err := decodeBody(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		if strings.TrimSpace(req.Location) == "" {
			return errBadRequest(c, "location is required")
		}

		nearby, err := deps.Matches.Nearby(c.UserContext(), domain.Query{
			Kind:     kind,
			Location: req.Location,
			Category: req.ServiceCategory,
		})
		if err != nil {
			if errors.Is(err, domain.ErrBadRequest) {
				return errBadRequest(c, err.Error())
			}
			LoggerFromCtx(c.UserContext()).Warn("nearby lookup failed", "kind", kind, "error", err)
			return errNotFound(c, msgGeocodeNotFound, err.Error())
		}

		resp := fiber.Map{key: nearby}
		if kind == domain.KindArchitect && len(nearby) == 0 {
			resp["message"] = msgNoArchitects
		}
		return c.JSON(resp)
	}
}

// NavigationHandler serves POST /navigation.
func NavigationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req navigationRequest
		if err := decodeBody(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}

		q, err := parseRouteQuery(req)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		res, err := deps.Navigation.Navigate(c.UserContext(), q)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("navigation failed", "error", err)
			return navigationError(c, err)
		}

		return c.JSON(navigationResponse{
			Distance:   res.DistanceKm,
			Directions: json.RawMessage(res.Directions),
		})
	}
}

// parseRouteQuery accepts start_point as {"lat","lng"} or as a free-text address.
func parseRouteQuery(req navigationRequest) (domain.RouteQuery, error) {
	q := domain.RouteQuery{EndAddress: strings.TrimSpace(req.EndPoint)}
	if q.EndAddress == "" {
		return q, errors.New("start_point and end_point are required")
	}

	raw := bytes.TrimSpace(req.StartPoint)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return q, errors.New("start_point and end_point are required")
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &q.StartAddress); err != nil || strings.TrimSpace(q.StartAddress) == "" {
			return q, errors.New("start_point must not be empty")
		}
	case raw[0] == '{':
		var p struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := json.Unmarshal(raw, &p); err != nil || p.Lat == nil || p.Lng == nil {
			return q, errors.New("start_point must be an object with lat and lng keys or an address")
		}
		q.StartPoint = &domain.GeoPoint{Lat: *p.Lat, Lng: *p.Lng}
	default:
		return q, errors.New("start_point must be an object with lat and lng keys or an address")
	}
	return q, nil
}

// ListCandidatesHandler returns the normalized snapshot of a kind, paginated.
func ListCandidatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := domain.ParseKind(c.Params("kind"))
		if err != nil {
			return errNotFound(c, "Unknown candidate kind.", err.Error())
		}

		candidates := deps.Candidates.Fetch(c.UserContext(), kind)
		if category := c.Query("service_category"); category != "" {
			filtered := make([]domain.Candidate, 0, len(candidates))
			for _, cand := range candidates {
				if cand.Category == category {
					filtered = append(filtered, cand)
				}
			}
			candidates = filtered
		}

		pg := parsePagination(c)
		pg.Total = len(candidates)
		start, end := pg.bounds()

		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: candidates[start:end], Pagination: pg})
	}
}

// RefreshCandidatesHandler drops and rebuilds the snapshot of a kind.
func RefreshCandidatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := domain.ParseKind(c.Params("kind"))
		if err != nil {
			return errNotFound(c, "Unknown candidate kind.", err.Error())
		}

		ctx := c.UserContext()
		if err := deps.Candidates.Invalidate(ctx, kind); err != nil {
			LoggerFromCtx(ctx).Warn("snapshot invalidation failed", "kind", kind, "error", err)
		}
		n, err := deps.Candidates.Refresh(ctx, kind)
		if err != nil {
			if errors.Is(err, domain.ErrUpstreamUnavailable) {
				return errUnavailable(c, err.Error())
			}
			return errInternal(c, "Refresh failed.", err.Error())
		}

		return c.JSON(fiber.Map{"kind": kind, "candidates": n})
	}
}

// SourceStatusHandler returns per-kind record counts of a database-backed source.
func SourceStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Sources == nil {
			return errNotFound(c, "Source status not available.",
				"source status is only reported for postgres and mongo sources")
		}

		stats, err := deps.Sources.Stats(c.UserContext())
		if err != nil {
			return errInternal(c, "Source status failed.", err.Error())
		}

		c.Set(fiber.HeaderCacheControl, "public, max-age=60")
		return c.JSON(fiber.Map{"sources": stats})
	}
}
