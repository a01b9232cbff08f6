package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user stored by JWTAuth.  The second
// result is false when the request is anonymous or the stored value is not
// a positive integer.
func UserID(c echo.Context) (uint64, bool) {
	switch t := c.Get(userIDKey).(type) {
	case uint64:
		return t, t > 0
	case int:
		return uint64(t), t > 0
	case int64:
		return uint64(t), t > 0
	case float64:
		return uint64(t), t > 0
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, n > 0
		}
	}
	return 0, false
}
