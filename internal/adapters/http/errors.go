package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// User-facing messages that existing clients match on.
const (
	msgDirectionsNotFound = "Directions not found. Please check the locations and try again."
	msgGeocodeNotFound    = "Geocode results not found."
	msgNoArchitects       = "No nearby architects found."
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable detail
	Error     string `json:"error"`   // Short user-facing summary
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code, summary, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		Error:     summary,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", "Bad Request.", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, summary, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", summary, msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, summary, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", summary, msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", "Service unavailable.", msg)
}

// navigationError maps a NavigationService error to a response.
func navigationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrGeocodeNotFound), errors.Is(err, domain.ErrRouteNotFound):
		return errNotFound(c, msgDirectionsNotFound, err.Error())
	default:
		return errInternal(c, msgDirectionsNotFound, err.Error())
	}
}

// NotFoundHandler answers every unmatched route. It is registered last.
func NotFoundHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgDirectionsNotFound})
	}
}
