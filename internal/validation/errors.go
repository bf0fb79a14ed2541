// Package validation holds the business rules applied to store records
// before they are persisted.  Rules are plain functions and validators are
// explicit objects; callers invoke them directly and translate the returned
// failures into user-facing messages.
package validation

import "strings"

// Failure is the single error kind produced by this package: a rule
// rejected the value of Field for a human-readable Reason.
type Failure struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (f *Failure) Error() string {
	if f.Field == "" {
		return f.Reason
	}
	return f.Field + ": " + f.Reason
}

// Failures collects every rule a record broke.  A validator returns a
// non-empty Failures or nil, never an empty slice.
type Failures []*Failure

func (fs Failures) Error() string {
	msgs := make([]string, 0, len(fs))
	for _, f := range fs {
		msgs = append(msgs, f.Error())
	}
	return strings.Join(msgs, "; ")
}

// add appends err when it is a *Failure, stamping the field name if the
// rule left it empty.
func (fs Failures) add(field string, err error) Failures {
	if err == nil {
		return fs
	}
	f, ok := err.(*Failure)
	if !ok {
		f = &Failure{Reason: err.Error()}
	}
	if f.Field == "" {
		f.Field = field
	}
	return append(fs, f)
}

// orNil keeps the nil-interface contract for callers checking err != nil.
func (fs Failures) orNil() error {
	if len(fs) == 0 {
		return nil
	}
	return fs
}
