package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/vidly/internal/metrics"
    "github.com/iliyamo/vidly/internal/model"
    "github.com/iliyamo/vidly/internal/repository"
    "github.com/iliyamo/vidly/internal/validation"
)

// CustomerHandler serves the staff-only customer endpoints.  Every write
// passes through Validator, which applies the membership age rule, before
// the database is touched.
type CustomerHandler struct {
    Customers *repository.CustomerRepo
    Rentals   *repository.RentalRepo
    Validator validation.Validator[*model.Customer]
    Metrics   *metrics.Metrics
}

func NewCustomerHandler(cr *repository.CustomerRepo, rr *repository.RentalRepo, v validation.Validator[*model.Customer], m *metrics.Metrics) *CustomerHandler {
    if cr == nil || rr == nil {
        panic("nil repository passed to NewCustomerHandler")
    }
    if v == nil {
        v = validation.NewCustomerValidator(nil)
    }
    return &CustomerHandler{Customers: cr, Rentals: rr, Validator: v, Metrics: m}
}

type customerReq struct {
    Name                     string  `json:"name"`
    IsSubscribedToNewsletter bool    `json:"is_subscribed_to_newsletter"`
    MembershipTypeID         int     `json:"membership_type_id"`
    Birthdate                *string `json:"birthdate"`
}

// bindCustomer binds and validates a customer body.  A nil customer means
// the error response has already been written.
func (h *CustomerHandler) bindCustomer(c echo.Context) (*model.Customer, error) {
    var req customerReq
    if err := c.Bind(&req); err != nil {
        return nil, c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
    }
    bd, ok := parseDate(req.Birthdate)
    if !ok {
        return nil, invalidField(c, h.Metrics, "customer", "birthdate", "The field Birthdate must be a date.")
    }
    // Anything outside the byte range can never name a membership type.
    mt := req.MembershipTypeID
    if mt < 0 || mt > 255 {
        mt = 255
    }
    cust := &model.Customer{
        Name:                     strings.TrimSpace(req.Name),
        IsSubscribedToNewsletter: req.IsSubscribedToNewsletter,
        MembershipTypeID:         model.MembershipTypeID(mt),
        Birthdate:                bd,
    }
    if err := h.Validator.Validate(cust); err != nil {
        return nil, invalid(c, h.Metrics, "customer", err)
    }
    return cust, nil
}

func (h *CustomerHandler) writeError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrUnknownMembershipType):
        return invalidField(c, h.Metrics, "customer", "membership_type_id", "Membership Type is not valid.")
    case errors.Is(err, repository.ErrCustomerNotFound):
        return c.JSON(http.StatusNotFound, errorBody("customer not found"))
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, errorBody("customer has rentals"))
    }
    return c.JSON(http.StatusInternalServerError, errorBody("db error"))
}

// List handles GET /v1/customers
func (h *CustomerHandler) List(c echo.Context) error {
    items, err := h.Customers.List(c.Request().Context())
    if err != nil {
        return h.writeError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Get handles GET /v1/customers/:id
func (h *CustomerHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    cust, err := h.Customers.GetByID(c.Request().Context(), id)
    if err != nil {
        return h.writeError(c, err)
    }
    return c.JSON(http.StatusOK, cust)
}

// Create handles POST /v1/customers
func (h *CustomerHandler) Create(c echo.Context) error {
    cust, err := h.bindCustomer(c)
    if cust == nil {
        return err
    }
    if err := h.Customers.Create(c.Request().Context(), cust); err != nil {
        return h.writeError(c, err)
    }
    return c.JSON(http.StatusCreated, cust)
}

// Update handles PUT /v1/customers/:id
func (h *CustomerHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    cust, err := h.bindCustomer(c)
    if cust == nil {
        return err
    }
    cust.ID = id
    if err := h.Customers.Update(c.Request().Context(), cust); err != nil {
        return h.writeError(c, err)
    }
    return c.JSON(http.StatusOK, cust)
}

// Delete handles DELETE /v1/customers/:id
func (h *CustomerHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    if err := h.Customers.Delete(c.Request().Context(), id); err != nil {
        return h.writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ListRentals handles GET /v1/customers/:id/rentals
func (h *CustomerHandler) ListRentals(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
    }
    ctx := c.Request().Context()
    if _, err := h.Customers.GetByID(ctx, id); err != nil {
        return h.writeError(c, err)
    }
    items, err := h.Rentals.ListByCustomer(ctx, id)
    if err != nil {
        return h.writeError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items})
}
