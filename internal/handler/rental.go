package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/vidly/internal/metrics"
    "github.com/iliyamo/vidly/internal/model"
    "github.com/iliyamo/vidly/internal/queue"
    "github.com/iliyamo/vidly/internal/repository"
    "github.com/iliyamo/vidly/internal/validation"
)

// Messages returned for checkouts the store cannot honour.
const (
    msgCustomerNotValid = "CustomerId is not valid."
    msgMovieIDsInvalid  = "One or more MovieIds are invalid."
    msgMovieUnavailable = "Movie is not available."
)

// RentalEventPublisher is satisfied by service.RentalPublisher.
type RentalEventPublisher interface {
    PublishRentalCreated(ctx context.Context, ev queue.RentalCreatedEvent) error
}

// RentalHandler checks movies out to customers and takes them back.
type RentalHandler struct {
    Rentals   *repository.RentalRepo
    Publisher RentalEventPublisher // optional
    Metrics   *metrics.Metrics
    Log       *logrus.Logger
    Now       func() time.Time
}

func NewRentalHandler(rr *repository.RentalRepo, pub RentalEventPublisher, m *metrics.Metrics, log *logrus.Logger) *RentalHandler {
    if rr == nil {
        panic("nil repository passed to NewRentalHandler")
    }
    return &RentalHandler{Rentals: rr, Publisher: pub, Metrics: m, Log: log, Now: time.Now}
}

// Create handles POST /v1/rentals.  All requested movies are checked out
// together or not at all.
func (h *RentalHandler) Create(c echo.Context) error {
    var req model.NewRental
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
    }
    if err := (validation.RentalRequestValidator{}).Validate(&req); err != nil {
        return invalid(c, h.Metrics, "rental", err)
    }

    rentals, err := h.Rentals.Create(c.Request().Context(), req, h.Now())
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrCustomerNotFound):
            return invalidField(c, h.Metrics, "rental", "customer_id", msgCustomerNotValid)
        case errors.Is(err, repository.ErrInvalidMovieIDs):
            return invalidField(c, h.Metrics, "rental", "movie_ids", msgMovieIDsInvalid)
        case errors.Is(err, repository.ErrMovieUnavailable):
            return invalidField(c, h.Metrics, "rental", "movie_ids", msgMovieUnavailable)
        }
        h.Log.WithError(err).Error("rental checkout failed")
        return c.JSON(http.StatusInternalServerError, errorBody("could not create rental"))
    }
    if h.Metrics != nil {
        h.Metrics.AddRentalsCreated(len(rentals))
    }
    h.publish(c, req.CustomerID, rentals)
    return c.JSON(http.StatusCreated, map[string]any{"items": rentals})
}

// publish sends the checkout event.  The rental is already committed, so
// a broker failure is logged and counted but not reported to the client.
func (h *RentalHandler) publish(c echo.Context, customerID uint64, rentals []*model.Rental) {
    if h.Publisher == nil || len(rentals) == 0 {
        return
    }
    staffID, _ := getUserID(c)
    ev := queue.RentalCreatedEvent{
        CustomerID:  customerID,
        StaffUserID: staffID,
        Rentals:     make([]queue.RentalLine, len(rentals)),
        RentedAt:    rentals[0].DateRented,
    }
    for i, r := range rentals {
        ev.Rentals[i] = queue.RentalLine{RentalID: r.ID, MovieID: r.MovieID}
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    err := h.Publisher.PublishRentalCreated(ctx, ev)
    if h.Metrics != nil {
        h.Metrics.IncrementEventsPublished(err == nil)
    }
    if err != nil {
        h.Log.WithError(err).WithField("customer_id", customerID).Warn("rental event not published")
    }
}

// Return handles POST /v1/rentals/:id/return
func (h *RentalHandler) Return(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    rental, err := h.Rentals.Return(c.Request().Context(), id, h.Now())
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrRentalNotFound):
            return c.JSON(http.StatusNotFound, errorBody("rental not found"))
        case errors.Is(err, repository.ErrAlreadyReturned):
            return c.JSON(http.StatusConflict, errorBody("rental already returned"))
        }
        h.Log.WithError(err).Error("rental return failed")
        return c.JSON(http.StatusInternalServerError, errorBody("could not return rental"))
    }
    if h.Metrics != nil {
        h.Metrics.IncrementRentalsReturned()
    }
    return c.JSON(http.StatusOK, rental)
}
