package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
    logtest "github.com/sirupsen/logrus/hooks/test"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/vidly/internal/config"
    "github.com/iliyamo/vidly/internal/model"
    "github.com/iliyamo/vidly/internal/utils"
)

const testSecret = "test-secret"

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func whoAmI(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get(CtxUserID), "role": c.Get(CtxRole)})
}

func TestJWTAuth(t *testing.T) {
    e := echo.New()
    e.GET("/me", whoAmI, JWTAuth(testSecret))

    tok, err := utils.NewAccessToken(testSecret, 42, model.RoleStaff, 5)
    require.NoError(t, err)
    other, err := utils.NewAccessToken("other-secret", 42, model.RoleStaff, 5)
    require.NoError(t, err)

    tests := []struct {
        name   string
        header string
        status int
    }{
        {"valid", "Bearer " + tok.Token, http.StatusOK},
        {"missing", "", http.StatusUnauthorized},
        {"not bearer", "Basic abc", http.StatusUnauthorized},
        {"wrong secret", "Bearer " + other.Token, http.StatusUnauthorized},
        {"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            req := httptest.NewRequest(http.MethodGet, "/me", nil)
            if tt.header != "" {
                req.Header.Set(echo.HeaderAuthorization, tt.header)
            }
            rec := serve(e, req)
            assert.Equal(t, tt.status, rec.Code)
            if tt.status == http.StatusOK {
                assert.JSONEq(t, `{"user_id":42,"role":"STAFF"}`, rec.Body.String())
            }
        })
    }
}

func TestRequireRole(t *testing.T) {
    withRole := func(role string) echo.MiddlewareFunc {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error {
                if role != "" {
                    c.Set(CtxRole, role)
                }
                return next(c)
            }
        }
    }
    ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

    tests := []struct {
        role   string
        status int
    }{
        {model.RoleManager, http.StatusNoContent},
        {model.RoleStaff, http.StatusForbidden},
        {"", http.StatusUnauthorized},
    }
    for _, tt := range tests {
        t.Run("role="+tt.role, func(t *testing.T) {
            e := echo.New()
            e.POST("/movies", ok, withRole(tt.role), RequireRole(model.RoleManager))
            rec := serve(e, httptest.NewRequest(http.MethodPost, "/movies", nil))
            assert.Equal(t, tt.status, rec.Code)
        })
    }
}

func TestRequestLogger(t *testing.T) {
    logger, hook := logtest.NewNullLogger()
    e := echo.New()
    e.Use(RequestLogger(logger))
    e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
    e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

    rec := serve(e, httptest.NewRequest(http.MethodGet, "/ok", nil))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
    entry := hook.LastEntry()
    require.NotNil(t, entry)
    assert.Equal(t, logrus.InfoLevel, entry.Level)
    assert.Equal(t, 200, entry.Data["status"])
    assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), entry.Data["request_id"])

    req := httptest.NewRequest(http.MethodGet, "/boom", nil)
    req.Header.Set(echo.HeaderXRequestID, "abc-123")
    rec = serve(e, req)
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
    entry = hook.LastEntry()
    assert.Equal(t, logrus.ErrorLevel, entry.Level)
    assert.Equal(t, "abc-123", entry.Data["request_id"])
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"items":[]}`))
    require.NoError(t, err)

    cr, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, cr.Status)
    assert.Equal(t, "application/json", cr.Header.Get("Content-Type"))
    assert.Equal(t, `{"items":[]}`, string(cr.Body))

    _, ok = decodePayload([]byte("garbage"))
    assert.False(t, ok)
    _, ok = decodePayload([]byte(`{}`))
    assert.False(t, ok)
}

func TestCaptureWriterStopsAtLimit(t *testing.T) {
    rec := httptest.NewRecorder()
    cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
    _, _ = cw.Write([]byte("abc"))
    _, _ = cw.Write([]byte("def"))

    assert.True(t, cw.truncated)
    assert.Equal(t, "abc", cw.buf.String())
    assert.Equal(t, "abcdef", rec.Body.String())
}

func TestResponseCacheWithoutRedisPassesThrough(t *testing.T) {
    logger, _ := logtest.NewNullLogger()
    rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, logger)
    calls := 0
    e := echo.New()
    e.GET("/v1/genres", func(c echo.Context) error {
        calls++
        return c.String(http.StatusOK, "x")
    }, rc.Middleware())
    e.POST("/v1/genres", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, rc.InvalidateOnWrite())

    serve(e, httptest.NewRequest(http.MethodGet, "/v1/genres", nil))
    serve(e, httptest.NewRequest(http.MethodGet, "/v1/genres", nil))
    rec := serve(e, httptest.NewRequest(http.MethodPost, "/v1/genres", nil))

    assert.Equal(t, 2, calls)
    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Empty(t, rec.Header().Get("X-Cache"))
    assert.NoError(t, rc.Invalidate(t.Context()))
}

func TestCacheKeyDependsOnQuery(t *testing.T) {
    rc := NewResponseCache(config.CacheConfig{Prefix: "vidly:cache", KeyStrategy: "route_query"}, nil, logrus.New())
    e := echo.New()
    key := func(target string) string {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
        return rc.key(c)
    }

    a, b := key("/v1/movies?available=true"), key("/v1/movies")
    assert.NotEqual(t, a, b)
    assert.Equal(t, a, key("/v1/movies?available=true"))
    assert.Regexp(t, `^vidly:cache:[0-9a-f]{40}$`, a)
}

func TestRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/rentals", nil)
    req.RemoteAddr = "10.0.0.7:5555"
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/rentals")

    cfg := config.RateLimitConfig{Prefix: "vidly:rl", KeyStrategy: "ip_user_route"}
    assert.Equal(t, "vidly:rl:ip:10.0.0.7:user:guest:route:POST /v1/rentals", rateKey(cfg, c))

    c.Set(CtxUserID, uint64(9))
    cfg.KeyStrategy = "user"
    assert.Equal(t, "vidly:rl:user:9", rateKey(cfg, c))

    cfg.KeyStrategy = "bogus"
    assert.Equal(t, "vidly:rl:ip:10.0.0.7", rateKey(cfg, c))
}

func TestParseBucketReply(t *testing.T) {
    r, err := parseBucketReply([]interface{}{int64(0), int64(0), int64(1500)})
    require.NoError(t, err)
    assert.False(t, r.allowed)
    assert.Equal(t, 1500*time.Millisecond, r.retry)

    r, err = parseBucketReply([]interface{}{int64(1), int64(59), int64(0)})
    require.NoError(t, err)
    assert.True(t, r.allowed)
    assert.EqualValues(t, 59, r.remaining)

    _, err = parseBucketReply("nope")
    assert.Error(t, err)
}
