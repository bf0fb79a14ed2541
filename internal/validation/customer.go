package validation

import (
	"strings"
	"time"

	"github.com/iliyamo/vidly/internal/model"
)

const customerNameMaxLength = 255

// CustomerValidator applies the customer form rules, including the
// membership age rule evaluated against the date supplied by its clock.
type CustomerValidator struct {
	now Clock
}

// NewCustomerValidator returns a validator reading the current date from
// now.  A nil clock falls back to time.Now.
func NewCustomerValidator(now Clock) *CustomerValidator {
	if now == nil {
		now = time.Now
	}
	return &CustomerValidator{now: now}
}

var _ Validator[*model.Customer] = (*CustomerValidator)(nil)

// Validate checks the name, the membership type and the age rule.
func (v *CustomerValidator) Validate(c *model.Customer) error {
	var fs Failures
	name := strings.TrimSpace(c.Name)
	fs = fs.add("name", required("Name", name))
	fs = fs.add("name", maxLength("Name", name, customerNameMaxLength))
	if !c.MembershipTypeID.Known() {
		// The age rule is only defined for the enumerated types.
		fs = fs.add("membership_type_id", &Failure{Reason: "Membership Type is not valid."})
		return fs.orNil()
	}
	fs = fs.add("birthdate", Min18YearsForMembership(c.MembershipTypeID, c.Birthdate, v.now()))
	return fs.orNil()
}
