package middleware

// identity.go holds the accessor handlers use to read the
// authenticated user set by JWTAuth.

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user's ID from the Echo context,
// or zero when no user is authenticated. Handlers behind JWTAuth can
// rely on a non-zero result.
func UserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}
