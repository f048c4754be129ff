// Package form holds the add-customer draft and its presence validation.
package form

import (
	"fmt"
	"strings"

	"github.com/muurk/customers/internal/api"
)

// Field names one input of the add-customer form
type Field int

const (
	FieldFirstName Field = iota
	FieldLastName
	FieldBusinessName
	FieldEmail
)

// Fields lists the inputs in the order the dialog shows them
var Fields = []Field{FieldFirstName, FieldLastName, FieldBusinessName, FieldEmail}

// String returns the JSON name of the field
func (f Field) String() string {
	switch f {
	case FieldFirstName:
		return "firstName"
	case FieldLastName:
		return "lastName"
	case FieldBusinessName:
		return "businessName"
	case FieldEmail:
		return "email"
	default:
		return fmt.Sprintf("Field(%d)", f)
	}
}

// Label returns the human-readable name of the field
func (f Field) Label() string {
	switch f {
	case FieldFirstName:
		return "First Name"
	case FieldLastName:
		return "Last Name"
	case FieldBusinessName:
		return "Business Name"
	case FieldEmail:
		return "Email Address"
	default:
		return f.String()
	}
}

// Required reports whether the field must be non-blank to submit
func (f Field) Required() bool {
	return f != FieldBusinessName
}

// Placeholder is the hint shown in an empty input; required fields carry a star
func (f Field) Placeholder() string {
	if f.Required() {
		return f.Label() + " *"
	}
	return f.Label()
}

// ParseField maps a JSON field name onto a Field
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// Draft is the in-progress, unsubmitted form values
type Draft struct {
	FirstName    string
	LastName     string
	Email        string
	BusinessName string
}

// Get returns the value of one field
func (d Draft) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return d.FirstName
	case FieldLastName:
		return d.LastName
	case FieldBusinessName:
		return d.BusinessName
	case FieldEmail:
		return d.Email
	default:
		return ""
	}
}

// IsZero reports whether every field is empty
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// Missing returns the required fields that are empty after trimming
func (d Draft) Missing() []Field {
	var missing []Field
	for _, f := range Fields {
		if f.Required() && strings.TrimSpace(d.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Customer converts the draft into the create payload. An empty business
// name is left out of the request.
func (d Draft) Customer() api.Customer {
	return api.Customer{
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		BusinessName: d.BusinessName,
	}
}

// ValidationError lists the required fields that are missing
type ValidationError struct {
	Missing []Field
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	labels := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		labels[i] = f.Label()
	}
	return "missing required fields: " + strings.Join(labels, ", ")
}

// Form holds a Draft. The zero value is an empty form.
type Form struct {
	draft Draft
}

// New returns an empty form
func New() *Form {
	return &Form{}
}

// Draft returns a copy of the current values
func (f *Form) Draft() Draft {
	return f.draft
}

// SetField assigns value to field as typed; no trimming or validation
func (f *Form) SetField(field Field, value string) {
	switch field {
	case FieldFirstName:
		f.draft.FirstName = value
	case FieldLastName:
		f.draft.LastName = value
	case FieldBusinessName:
		f.draft.BusinessName = value
	case FieldEmail:
		f.draft.Email = value
	}
}

// IsValid reports whether first name, last name and email are all non-blank.
// The business name never affects it.
func (f *Form) IsValid() bool {
	return len(f.draft.Missing()) == 0
}

// Validate returns a *ValidationError when IsValid is false
func (f *Form) Validate() error {
	if missing := f.draft.Missing(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Reset empties every field
func (f *Form) Reset() {
	f.draft = Draft{}
}
