package validation

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Validator checks a record and returns nil or a Failures listing every
// broken rule.
type Validator[T any] interface {
	Validate(v T) error
}

// Clock supplies the current date to rules that depend on it.
type Clock func() time.Time

func required(name, value string) error {
	if value == "" {
		return &Failure{Reason: fmt.Sprintf("The %s field is required.", name)}
	}
	return nil
}

func maxLength(name, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return &Failure{Reason: fmt.Sprintf("The field %s must be a string with a maximum length of %d.", name, max)}
	}
	return nil
}

func between(name string, value, lo, hi int) error {
	if value < lo || value > hi {
		return &Failure{Reason: fmt.Sprintf("The field %s must be between %d and %d.", name, lo, hi)}
	}
	return nil
}
