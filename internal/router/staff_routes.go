package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vidly/internal/handler"
	"github.com/iliyamo/vidly/internal/middleware"
	"github.com/iliyamo/vidly/internal/model"
)

// RegisterStaff registers the counter routes used by any store employee:
// customer records and rentals.  Rentals change movie availability, so they
// also drop the catalogue cache.
func RegisterStaff(e *echo.Echo, cust *handler.CustomerHandler, rent *handler.RentalHandler, cache *middleware.ResponseCache, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleManager),
	)

	// ---- Customers ----
	g.GET("/customers", cust.List)
	g.POST("/customers", cust.Create)
	g.GET("/customers/:id", cust.Get)
	g.PUT("/customers/:id", cust.Update)
	g.DELETE("/customers/:id", cust.Delete)
	g.GET("/customers/:id/rentals", cust.ListRentals)

	// ---- Rentals ----
	invalidate := cache.InvalidateOnWrite()
	g.POST("/rentals", rent.Create, invalidate)
	g.POST("/rentals/:id/return", rent.Return, invalidate)
}
