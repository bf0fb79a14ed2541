package validation

import (
	"time"

	"github.com/iliyamo/vidly/internal/model"
)

// MinimumMembershipAge is the age a customer must have reached to sign up
// for a committed membership.
const MinimumMembershipAge = 18

// Reasons reported by Min18YearsForMembership.
const (
	// ReasonBirthdateRequired: a non-exempt membership without a birthdate.
	ReasonBirthdateRequired = "Birthdate is required."
	// ReasonUnderage: the customer is younger than MinimumMembershipAge.
	ReasonUnderage = "Customer should be at least 18 years old to go on a membership"
)

// Min18YearsForMembership reports whether a customer with the given
// membership type and birthdate may hold that membership on date today.
// Unknown and pay-as-you-go memberships carry no age requirement.  Every
// other type needs a birthdate at least MinimumMembershipAge years before
// today.  A nil return means the customer is eligible; otherwise the error
// is a *Failure carrying the reason.
func Min18YearsForMembership(membershipTypeID model.MembershipTypeID, birthdate *time.Time, today time.Time) error {
	if membershipTypeID == model.MembershipUnknown || membershipTypeID == model.MembershipPayAsYouGo {
		return nil
	}
	if birthdate == nil {
		return &Failure{Field: "birthdate", Reason: ReasonBirthdateRequired}
	}
	if Age(*birthdate, today) < MinimumMembershipAge {
		return &Failure{Field: "birthdate", Reason: ReasonUnderage}
	}
	return nil
}

// Age returns the number of whole years between birthdate and today.  Both
// dates are packed as yyyymmdd integers so the subtraction accounts for
// whether the birthday has come round yet this year.  Only the calendar
// fields of each value are read, in that value's own location.
func Age(birthdate, today time.Time) int {
	a := (today.Year()*100+int(today.Month()))*100 + today.Day()
	b := (birthdate.Year()*100+int(birthdate.Month()))*100 + birthdate.Day()
	return (a - b) / 10000
}
