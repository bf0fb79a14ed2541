package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID returns the authenticated staff member's id as a string for use
// in cache and rate-limit keys, or "guest" on public routes.
func userID(c echo.Context) string {
    if id, ok := c.Get(CtxUserID).(uint64); ok && id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "guest"
}
