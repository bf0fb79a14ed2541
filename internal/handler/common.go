package handler // handler defines http handlers

import (
    "errors"   // errors inspects validation failures
    "net/http" // http provides status code constants
    "strconv"  // strconv parses path identifiers
    "time"     // time parses calendar dates

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/vidly/internal/metrics"    // counters for rejected fields
    "github.com/iliyamo/vidly/internal/validation" // validation failure types
)

// dateLayout is the calendar-date format accepted for birthdates and
// release dates.
const dateLayout = "2006-01-02"

// errorBody is the JSON shape of every non-validation error response.
func errorBody(msg string) map[string]string {
    return map[string]string{"error": msg}
}

// getUserID extracts the user_id placed in the context by the JWT middleware
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := c.Get("user_id").(uint64); ok && id != 0 {
        return id, nil
    }
    return 0, errors.New("invalid user_id in context")
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// parseDate parses an optional YYYY-MM-DD value; RFC 3339 timestamps are
// accepted and truncated to their date.
func parseDate(s *string) (*time.Time, bool) {
    if s == nil || *s == "" {
        return nil, true
    }
    t, err := time.Parse(dateLayout, *s)
    if err != nil {
        ts, err2 := time.Parse(time.RFC3339, *s)
        if err2 != nil {
            return nil, false
        }
        t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
    }
    return &t, true
}

// validationError is the 400 body listing every rejected field.
type validationError struct {
    Error  string                `json:"error"`
    Fields []*validation.Failure `json:"fields"`
}

// invalid answers 400 with the failures carried by err and counts each
// rejected field under record.  err must come from a validator.
func invalid(c echo.Context, m *metrics.Metrics, record string, err error) error {
    var fields validation.Failures
    var single *validation.Failure
    switch {
    case errors.As(err, &fields):
    case errors.As(err, &single):
        fields = validation.Failures{single}
    default:
        fields = validation.Failures{{Reason: err.Error()}}
    }
    if m != nil {
        for _, f := range fields {
            m.IncrementValidationFailure(record, f.Field)
        }
    }
    return c.JSON(http.StatusBadRequest, validationError{Error: "validation failed", Fields: fields})
}

// invalidField answers 400 for a single field rejected outside a validator,
// such as an unparseable date or a reference the database did not accept.
func invalidField(c echo.Context, m *metrics.Metrics, record, field, reason string) error {
    return invalid(c, m, record, &validation.Failure{Field: field, Reason: reason})
}
