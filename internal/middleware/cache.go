package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/vidly/internal/config"
)

// captureWriter tees the response body into buf (up to limit bytes) while
// still writing it to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    truncated bool
    limit     int
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.truncated {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.truncated = true
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is what ends up in Redis for a cached GET.
type cachedResponse struct {
    Status int         `json:"s"`
    Header http.Header `json:"h"`
    Body   []byte      `json:"b"`
}

func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    return json.Marshal(cachedResponse{Status: status, Header: header, Body: body})
}

func decodePayload(bs []byte) (cachedResponse, bool) {
    var cr cachedResponse
    if err := json.Unmarshal(bs, &cr); err != nil || cr.Status == 0 {
        return cachedResponse{}, false
    }
    if cr.Header == nil {
        cr.Header = make(http.Header)
    }
    return cr, true
}

// ResponseCache caches successful catalogue reads in Redis.  A nil Redis
// client or a disabled config turns every method into a pass-through.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
    log *logrus.Logger
}

// NewResponseCache builds a cache over rdb.  rdb may be nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, log *logrus.Logger) *ResponseCache {
    if cfg.TTL <= 0 {
        cfg.TTL = time.Minute
    }
    return &ResponseCache{cfg: cfg, rdb: rdb, log: log}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

// key hashes the request parts selected by KeyStrategy under Prefix.
func (rc *ResponseCache) key(c echo.Context) string {
    r := c.Request()
    var parts []string
    switch strings.ToLower(rc.cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", c.Path()}
    case "path":
        parts = []string{"path", r.URL.Path}
    case "method_route_query":
        parts = []string{"method", r.Method, "route", r.URL.Path, "q", r.URL.RawQuery}
    default: // route_query
        parts = []string{"route", r.URL.Path, "q", r.URL.RawQuery}
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", rc.cfg.Prefix, sum)
}

// Middleware serves cached responses and stores fresh 200 responses.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        if !rc.enabled() {
            return next
        }
        return func(c echo.Context) error {
            if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := rc.key(c)

            if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
                if cr, ok := decodePayload(bs); ok {
                    h := c.Response().Header()
                    for k, vals := range cr.Header {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        h[k] = append([]string(nil), vals...)
                    }
                    h.Set("X-Cache", "HIT")
                    c.Response().WriteHeader(cr.Status)
                    _, werr := c.Response().Write(cr.Body)
                    return werr
                }
            } else if err != redis.Nil {
                rc.log.WithError(err).WithField("key", key).Warn("cache read failed")
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            hdr.Del(echo.HeaderXRequestID)
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            // The request context is about to be cancelled.
            if err := rc.rdb.Set(context.Background(), key, payload, rc.cfg.TTL).Err(); err != nil {
                rc.log.WithError(err).WithField("key", key).Warn("cache write failed")
            }
            return nil
        }
    }
}

// Invalidate deletes every key under the cache prefix.
func (rc *ResponseCache) Invalidate(ctx context.Context) error {
    if !rc.enabled() {
        return nil
    }
    iter := rc.rdb.Scan(ctx, 0, rc.cfg.Prefix+":*", 100).Iterator()
    var batch []string
    for iter.Next(ctx) {
        batch = append(batch, iter.Val())
        if len(batch) == 100 {
            if err := rc.rdb.Del(ctx, batch...).Err(); err != nil {
                return fmt.Errorf("cache invalidate: %w", err)
            }
            batch = batch[:0]
        }
    }
    if err := iter.Err(); err != nil {
        return fmt.Errorf("cache invalidate: %w", err)
    }
    if len(batch) > 0 {
        if err := rc.rdb.Del(ctx, batch...).Err(); err != nil {
            return fmt.Errorf("cache invalidate: %w", err)
        }
    }
    return nil
}

// InvalidateOnWrite drops the catalogue cache after a write handler
// answered with a 2xx status.
func (rc *ResponseCache) InvalidateOnWrite() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        if !rc.enabled() {
            return next
        }
        return func(c echo.Context) error {
            err := next(c)
            if status := c.Response().Status; err == nil && status >= 200 && status < 300 {
                if ierr := rc.Invalidate(context.Background()); ierr != nil {
                    rc.log.WithError(ierr).Warn("cache invalidation failed")
                }
            }
            return err
        }
    }
}
