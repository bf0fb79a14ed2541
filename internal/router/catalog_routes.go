package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vidly/internal/handler"
	"github.com/iliyamo/vidly/internal/middleware"
	"github.com/iliyamo/vidly/internal/model"
)

// RegisterCatalog registers the genre, membership type and movie routes.
// Reads are public and served through the response cache; writes require
// the MANAGER role and drop the cache once they succeed.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache *middleware.ResponseCache, jwtSecret string) {
	cached := cache.Middleware()
	e.GET("/v1/genres", h.ListGenres, cached)
	e.GET("/v1/membership-types", h.ListMembershipTypes, cached)
	e.GET("/v1/movies", h.ListMovies, cached)
	e.GET("/v1/movies/:id", h.GetMovie, cached)

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager),
		cache.InvalidateOnWrite(),
	)
	g.POST("/genres", h.CreateGenre)
	g.POST("/movies", h.CreateMovie)
	g.PUT("/movies/:id", h.UpdateMovie)
	g.DELETE("/movies/:id", h.DeleteMovie)
}
