// Package queue defines the messages exchanged over the broker and the
// background consumer that records them.
package queue

import (
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// RentalCreatedQueue carries one RentalCreatedEvent per checkout.
const RentalCreatedQueue = "rental.created"

// RentalLine is one movie handed over in a checkout.
type RentalLine struct {
    RentalID uint64 `json:"rental_id"`
    MovieID  uint64 `json:"movie_id"`
}

// RentalCreatedEvent is published after a checkout commits.  It carries
// enough for downstream consumers to log or notify without querying the
// store database.
type RentalCreatedEvent struct {
    CustomerID  uint64       `json:"customer_id"`
    StaffUserID uint64       `json:"staff_user_id"`
    Rentals     []RentalLine `json:"rentals"`
    RentedAt    time.Time    `json:"rented_at"`
}

// DeclareRentalQueue declares the durable rental queue.  Publisher and
// consumer both call it, so either may start first.
func DeclareRentalQueue(ch *amqp.Channel) error {
    _, err := ch.QueueDeclare(
        RentalCreatedQueue, // name
        true,               // durable
        false,              // autoDelete
        false,              // exclusive
        false,              // noWait
        nil,                // args
    )
    return err
}
