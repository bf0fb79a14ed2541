package model

import "time"

// Rental records one movie copy handed to a customer.  A rental is open
// while DateReturned is nil.
type Rental struct {
    ID           uint64     `json:"id"`                      // rentals.id
    CustomerID   uint64     `json:"customer_id"`             // rentals.customer_id
    MovieID      uint64     `json:"movie_id"`                // rentals.movie_id
    DateRented   time.Time  `json:"date_rented"`             // rentals.date_rented
    DateReturned *time.Time `json:"date_returned,omitempty"` // rentals.date_returned (nullable)
}

// NewRental is the payload accepted when a clerk checks out one or more
// movies for a customer.
type NewRental struct {
    CustomerID uint64   `json:"customer_id"`
    MovieIDs   []uint64 `json:"movie_ids"`
}
