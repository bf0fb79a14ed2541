package handler // handler package contains the movie catalogue handlers

import (
    "errors"   // errors matches repository sentinels
    "net/http" // http provides status code constants
    "strconv"  // strconv parses the available query flag
    "strings"  // strings offers trimming utilities

    "github.com/labstack/echo/v4" // echo is the web framework used for handlers

    "github.com/iliyamo/vidly/internal/metrics"    // validation failure counters
    "github.com/iliyamo/vidly/internal/model"      // catalogue records
    "github.com/iliyamo/vidly/internal/repository" // catalogue persistence
    "github.com/iliyamo/vidly/internal/validation" // catalogue rules
)

// CatalogHandler serves genres, membership types and movies.  Reads are
// public; writes are mounted behind the MANAGER role.
type CatalogHandler struct {
    Genres      *repository.GenreRepo
    Memberships *repository.MembershipTypeRepo
    Movies      *repository.MovieRepo
    Metrics     *metrics.Metrics
}

// NewCatalogHandler constructs a CatalogHandler and panics if a repository is nil
func NewCatalogHandler(g *repository.GenreRepo, mt *repository.MembershipTypeRepo, mv *repository.MovieRepo, m *metrics.Metrics) *CatalogHandler {
    if g == nil || mt == nil || mv == nil {
        panic("nil repository passed to NewCatalogHandler")
    }
    return &CatalogHandler{Genres: g, Memberships: mt, Movies: mv, Metrics: m}
}

// ListGenres handles GET /v1/genres
func (h *CatalogHandler) ListGenres(c echo.Context) error {
    items, err := h.Genres.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorBody("db error"))
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// CreateGenre handles POST /v1/genres
func (h *CatalogHandler) CreateGenre(c echo.Context) error {
    var g model.Genre
    if err := c.Bind(&g); err != nil {
        return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
    }
    g.Name = strings.TrimSpace(g.Name)
    if err := (validation.GenreValidator{}).Validate(&g); err != nil {
        return invalid(c, h.Metrics, "genre", err)
    }
    if err := h.Genres.Create(c.Request().Context(), &g); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, errorBody("genre already exists"))
        }
        return c.JSON(http.StatusInternalServerError, errorBody("could not create genre"))
    }
    return c.JSON(http.StatusCreated, g)
}

// ListMembershipTypes handles GET /v1/membership-types
func (h *CatalogHandler) ListMembershipTypes(c echo.Context) error {
    items, err := h.Memberships.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorBody("db error"))
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// ListMovies handles GET /v1/movies.  ?available=true hides titles with no
// copy on the shelf.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
    availableOnly := false
    if s := c.QueryParam("available"); s != "" {
        b, err := strconv.ParseBool(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, errorBody("invalid available flag"))
        }
        availableOnly = b
    }
    items, err := h.Movies.List(c.Request().Context(), availableOnly)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorBody("db error"))
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetMovie handles GET /v1/movies/:id
func (h *CatalogHandler) GetMovie(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    m, err := h.Movies.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrMovieNotFound) {
            return c.JSON(http.StatusNotFound, errorBody("movie not found"))
        }
        return c.JSON(http.StatusInternalServerError, errorBody("db error"))
    }
    return c.JSON(http.StatusOK, m)
}

// movieReq is the body accepted by CreateMovie and UpdateMovie.
type movieReq struct {
    Name          string  `json:"name"`
    GenreID       uint8   `json:"genre_id"`
    ReleaseDate   *string `json:"release_date"`
    NumberInStock int     `json:"number_in_stock"`
}

// bindMovie binds and validates a movie body.  A nil movie means the error
// response has already been written.
func (h *CatalogHandler) bindMovie(c echo.Context) (*model.Movie, error) {
    var req movieReq
    if err := c.Bind(&req); err != nil {
        return nil, c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
    }
    rd, dateOK := parseDate(req.ReleaseDate)
    if !dateOK {
        return nil, invalidField(c, h.Metrics, "movie", "release_date", "The field Release Date must be a date.")
    }
    // Out-of-range stock is reported by the validator, not truncated.
    stock := req.NumberInStock
    if stock < 0 || stock > 255 {
        stock = 0
    }
    m := &model.Movie{
        Name:          strings.TrimSpace(req.Name),
        GenreID:       req.GenreID,
        ReleaseDate:   rd,
        NumberInStock: uint8(stock),
    }
    if verr := (validation.MovieValidator{}).Validate(m); verr != nil {
        return nil, invalid(c, h.Metrics, "movie", verr)
    }
    return m, nil
}

// movieWriteError maps repository errors from Create/Update.
func (h *CatalogHandler) movieWriteError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrGenreNotFound):
        return invalidField(c, h.Metrics, "movie", "genre_id", "Genre is not valid.")
    case errors.Is(err, repository.ErrMovieNotFound):
        return c.JSON(http.StatusNotFound, errorBody("movie not found"))
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, errorBody("number in stock is below the copies rented out"))
    }
    return c.JSON(http.StatusInternalServerError, errorBody("could not save movie"))
}

// CreateMovie handles POST /v1/movies
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
    m, err := h.bindMovie(c)
    if m == nil {
        return err
    }
    if err := h.Movies.Create(c.Request().Context(), m); err != nil {
        return h.movieWriteError(c, err)
    }
    return c.JSON(http.StatusCreated, m)
}

// UpdateMovie handles PUT /v1/movies/:id
func (h *CatalogHandler) UpdateMovie(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    m, err := h.bindMovie(c)
    if m == nil {
        return err
    }
    m.ID = id
    if err := h.Movies.Update(c.Request().Context(), m); err != nil {
        return h.movieWriteError(c, err)
    }
    return c.JSON(http.StatusOK, m)
}

// DeleteMovie handles DELETE /v1/movies/:id.  Movies with rental history
// cannot be deleted.
func (h *CatalogHandler) DeleteMovie(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
        switch {
        case errors.Is(err, repository.ErrMovieNotFound):
            return c.JSON(http.StatusNotFound, errorBody("movie not found"))
        case errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusConflict, errorBody("movie has rentals"))
        }
        return c.JSON(http.StatusInternalServerError, errorBody("could not delete movie"))
    }
    return c.NoContent(http.StatusNoContent)
}
