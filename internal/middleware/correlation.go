package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// CorrelationID ensures every request carries an identifier that ties its log lines together.
// An incoming X-Request-ID or X-Correlation-ID is reused; otherwise a UUID is minted.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get(RequestIDHeader))
		if incoming == "" {
			incoming = strings.TrimSpace(c.Get("X-Correlation-ID"))
		}
		if incoming == "" || len(incoming) > 128 {
			incoming = uuid.NewString()
		}

		c.Locals("request_id", incoming)
		c.Set(RequestIDHeader, incoming)
		c.SetUserContext(context.WithValue(c.UserContext(), requestIDKey{}, incoming))

		return c.Next()
	}
}

// RequestIDFromContext extracts the request identifier from a context, if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetCorrelationID returns the request identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("request_id").(string); ok {
		return id
	}
	return RequestIDFromContext(c.UserContext())
}
