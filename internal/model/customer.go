package model

import "time"

// Customer represents a store customer as stored in the `customers` table.
// Birthdate is optional: it only becomes mandatory when the customer signs
// up for a committed membership (see validation.Min18YearsForMembership).
//
// Fields:
//  ID                       – primary key identifier.
//  Name                     – full name of the customer.
//  IsSubscribedToNewsletter – newsletter opt-in flag.
//  MembershipTypeID         – foreign key into membership_types.
//  Birthdate                – calendar date of birth (nullable).
type Customer struct {
    ID                       uint64           `json:"id"`                          // customers.id
    Name                     string           `json:"name"`                        // customers.name
    IsSubscribedToNewsletter bool             `json:"is_subscribed_to_newsletter"` // customers.is_subscribed_to_newsletter
    MembershipTypeID         MembershipTypeID `json:"membership_type_id"`          // customers.membership_type_id
    Birthdate                *time.Time       `json:"birthdate,omitempty"`         // customers.birthdate (nullable)
}
