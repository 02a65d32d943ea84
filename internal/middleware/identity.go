package middleware

// identity.go defines helpers shared across middleware files. The response
// cache and the rate limiter both key on the authenticated user so one
// user's plant list is never served from another user's cache entry.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// userID extracts the authenticated user identifier placed in context by
// JWTAuth. It returns "guest" when no user is authenticated. The value may
// arrive as a string or a JSON number depending on how the auth service
// encodes the subject claim.
func userID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "guest"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	}
	return "guest"
}
