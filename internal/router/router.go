package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql" // the pool probed by the readiness check

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/vidly/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/vidly/internal/metrics"    // Prometheus exposition
	"github.com/iliyamo/vidly/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/vidly/internal/model"      // staff roles
)

// RegisterRoutes registers the operational endpoints that never require
// authentication: liveness, readiness and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db *sql.DB, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
}

// RegisterAuth registers the staff account routes.  Token exchange lives
// under /v1/auth and needs no session; register only succeeds on an empty
// store.  /v1/me needs a valid access token, and account creation and role
// changes are reserved to managers.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	// Logout accepts either a refresh token or a Bearer access token, so it
	// is not behind JWTAuth.
	g.POST("/logout", a.Logout)

	authed := middleware.JWTAuth(jwtSecret)
	e.GET("/v1/me", a.Me, authed, middleware.RequireRole(model.RoleStaff, model.RoleManager))
	e.POST("/v1/users", a.CreateUser, authed, middleware.RequireRole(model.RoleManager))
	e.PUT("/v1/users/:id/role", a.SetRole, authed, middleware.RequireRole(model.RoleManager))
}
