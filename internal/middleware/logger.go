package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request and makes sure every
// request carries an X-Request-ID, generating one when the client did not
// send it.  5xx responses log at error level and 4xx at warn.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            rid := req.Header.Get(echo.HeaderXRequestID)
            if rid == "" {
                rid = uuid.NewString()
            }
            c.Response().Header().Set(echo.HeaderXRequestID, rid)

            start := time.Now()
            err := next(c)
            if err != nil {
                // Let echo write the error response so the status is final.
                c.Error(err)
            }

            status := c.Response().Status
            fields := logrus.Fields{
                "request_id": rid,
                "method":     req.Method,
                "path":       req.URL.Path,
                "route":      c.Path(),
                "status":     status,
                "latency":    time.Since(start).String(),
                "ip":         c.RealIP(),
                "bytes":      c.Response().Size,
            }
            if uid := userID(c); uid != "guest" {
                fields["user_id"] = uid
            }
            if req.URL.RawQuery != "" {
                fields["query"] = req.URL.RawQuery
            }
            entry := logger.WithFields(fields)
            if err != nil {
                entry = entry.WithError(err)
            }
            switch {
            case status >= 500:
                entry.Error("http request")
            case status >= 400:
                entry.Warn("http request")
            default:
                entry.Info("http request")
            }
            return nil
        }
    }
}
