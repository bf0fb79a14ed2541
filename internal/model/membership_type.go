package model

// MembershipTypeID identifies a customer's rental plan.  The numeric values
// match the primary keys seeded into the `membership_types` table, with
// Unknown (0) reserved for customers that have not picked a plan yet.
type MembershipTypeID uint8

const (
    MembershipUnknown    MembershipTypeID = 0
    MembershipPayAsYouGo MembershipTypeID = 1
    MembershipMonthly    MembershipTypeID = 2
    MembershipQuarterly  MembershipTypeID = 3
    MembershipYearly     MembershipTypeID = 4
)

// Known reports whether id is one of the enumerated membership types.
func (id MembershipTypeID) Known() bool {
    return id <= MembershipYearly
}

// String returns the display name used in the seed data.
func (id MembershipTypeID) String() string {
    switch id {
    case MembershipUnknown:
        return "Unknown"
    case MembershipPayAsYouGo:
        return "Pay as You Go"
    case MembershipMonthly:
        return "Monthly"
    case MembershipQuarterly:
        return "Quarterly"
    case MembershipYearly:
        return "Yearly"
    }
    return "Invalid"
}

// MembershipType represents a row in the `membership_types` table.
//
// Fields:
//  ID               – membership_types.id, one of the MembershipTypeID values.
//  Name             – display name (e.g. Monthly).
//  SignUpFee        – one-off fee charged when joining.
//  DurationInMonths – length of the commitment; zero for pay as you go.
//  DiscountRate     – percentage discount applied to rentals.
type MembershipType struct {
    ID               MembershipTypeID `json:"id"`                 // membership_types.id
    Name             string           `json:"name"`               // membership_types.name
    SignUpFee        uint16           `json:"sign_up_fee"`        // membership_types.sign_up_fee
    DurationInMonths uint8            `json:"duration_in_months"` // membership_types.duration_in_months
    DiscountRate     uint8            `json:"discount_rate"`      // membership_types.discount_rate
}
