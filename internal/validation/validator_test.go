package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vidly/internal/model"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func reasons(t *testing.T, err error) map[string][]string {
	t.Helper()
	var fs Failures
	require.True(t, errors.As(err, &fs), "expected Failures, got %T", err)
	out := map[string][]string{}
	for _, f := range fs {
		out[f.Field] = append(out[f.Field], f.Reason)
	}
	return out
}

func TestCustomerValidator(t *testing.T) {
	v := NewCustomerValidator(fixedClock(today))

	t.Run("valid monthly member", func(t *testing.T) {
		c := &model.Customer{Name: "Mary Smith", MembershipTypeID: model.MembershipMonthly, Birthdate: datePtr(1990, time.May, 2)}
		assert.NoError(t, v.Validate(c))
	})

	t.Run("pay as you go without birthdate", func(t *testing.T) {
		c := &model.Customer{Name: "John Smith", MembershipTypeID: model.MembershipPayAsYouGo}
		assert.NoError(t, v.Validate(c))
	})

	t.Run("reports every broken rule", func(t *testing.T) {
		c := &model.Customer{Name: "  ", MembershipTypeID: model.MembershipYearly}
		got := reasons(t, v.Validate(c))
		assert.Equal(t, []string{"The Name field is required."}, got["name"])
		assert.Equal(t, []string{ReasonBirthdateRequired}, got["birthdate"])
	})

	t.Run("underage", func(t *testing.T) {
		c := &model.Customer{Name: "Teen", MembershipTypeID: model.MembershipQuarterly, Birthdate: datePtr(2006, time.June, 16)}
		got := reasons(t, v.Validate(c))
		assert.Equal(t, []string{ReasonUnderage}, got["birthdate"])
	})

	t.Run("name too long", func(t *testing.T) {
		c := &model.Customer{Name: strings.Repeat("a", 256), MembershipTypeID: model.MembershipUnknown}
		got := reasons(t, v.Validate(c))
		assert.Len(t, got["name"], 1)
	})

	t.Run("unknown membership type id", func(t *testing.T) {
		c := &model.Customer{Name: "X", MembershipTypeID: 9}
		got := reasons(t, v.Validate(c))
		assert.Equal(t, []string{"Membership Type is not valid."}, got["membership_type_id"])
		assert.NotContains(t, got, "birthdate")
	})
}

func TestCustomerValidator_UsesClock(t *testing.T) {
	c := &model.Customer{Name: "Teen", MembershipTypeID: model.MembershipMonthly, Birthdate: datePtr(2006, time.June, 16)}
	assert.Error(t, NewCustomerValidator(fixedClock(today)).Validate(c))
	assert.NoError(t, NewCustomerValidator(fixedClock(today.AddDate(0, 0, 1))).Validate(c))
}

func TestMovieValidator(t *testing.T) {
	var v MovieValidator

	assert.NoError(t, v.Validate(&model.Movie{Name: "Die Hard", GenreID: 1, NumberInStock: 5}))

	got := reasons(t, v.Validate(&model.Movie{NumberInStock: 21}))
	assert.Equal(t, []string{"The Name field is required."}, got["name"])
	assert.Equal(t, []string{"The Genre field is required."}, got["genre_id"])
	assert.Equal(t, []string{"The field Number in Stock must be between 1 and 20."}, got["number_in_stock"])

	got = reasons(t, v.Validate(&model.Movie{Name: "Zero", GenreID: 2}))
	assert.Contains(t, got, "number_in_stock")
}

func TestGenreValidator(t *testing.T) {
	var v GenreValidator
	assert.NoError(t, v.Validate(&model.Genre{Name: "Documentary"}))

	got := reasons(t, v.Validate(&model.Genre{Name: strings.Repeat("x", 101)}))
	assert.Equal(t, []string{"The field Name must be a string with a maximum length of 100."}, got["name"])
}

func TestRentalRequestValidator(t *testing.T) {
	var v RentalRequestValidator
	assert.NoError(t, v.Validate(&model.NewRental{CustomerID: 1, MovieIDs: []uint64{1, 2}}))

	got := reasons(t, v.Validate(&model.NewRental{CustomerID: 1}))
	assert.Equal(t, []string{ReasonNoMovieIDs}, got["movie_ids"])

	got = reasons(t, v.Validate(&model.NewRental{MovieIDs: []uint64{3, 3}}))
	assert.Contains(t, got, "customer_id")
	assert.Equal(t, []string{"One or more MovieIds are invalid."}, got["movie_ids"])
}

func TestFailuresError(t *testing.T) {
	fs := Failures{{Field: "name", Reason: "bad"}, {Reason: "worse"}}
	assert.Equal(t, "name: bad; worse", fs.Error())
}
