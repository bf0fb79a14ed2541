package handler // declare the package name; contains HTTP handlers

import (
    "context"      // context bounds the database ping
    "database/sql" // sql provides the pool being checked
    "net/http"     // net/http provides status codes and response helpers
    "time"         // time sets the ping timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a liveness endpoint used by load balancers.  It returns a
// plain text "ok" with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports 503 until the database answers a ping.
func Ready(db *sql.DB) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, errorBody("database unavailable"))
        }
        return c.String(http.StatusOK, "ready")
    }
}
