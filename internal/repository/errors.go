// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors themselves.
package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"
)

var (
    ErrGenreNotFound    = errors.New("genre not found")
    ErrMovieNotFound    = errors.New("movie not found")
    ErrCustomerNotFound = errors.New("customer not found")
    ErrRentalNotFound   = errors.New("rental not found")

    // ErrUnknownMembershipType is returned when a customer references a
    // membership type that has no row in membership_types.
    ErrUnknownMembershipType = errors.New("membership type not found")

    // ErrInvalidMovieIDs is returned when a rental names a movie that
    // does not exist.
    ErrInvalidMovieIDs = errors.New("one or more movie ids are invalid")

    // ErrMovieUnavailable is returned when every copy of a requested movie
    // is already rented out.
    ErrMovieUnavailable = errors.New("movie is not available")

    // ErrAlreadyReturned is returned when a rental is returned twice.
    ErrAlreadyReturned = errors.New("rental already returned")

    // ErrConflict is returned when a delete or update cannot be
    // performed because of conflicting state, such as deleting a movie
    // that still has rentals. Handlers should translate this into an
    // HTTP 409 response.
    ErrConflict = errors.New("conflict")
)

// MySQL server error numbers inspected by the repositories.
const (
    errDupEntry        = 1062 // ER_DUP_ENTRY
    errRowIsReferenced = 1451 // ER_ROW_IS_REFERENCED_2
    errNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

// mysqlErrno returns the server error number carried by err, or 0.
func mysqlErrno(err error) uint16 {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number
    }
    return 0
}
