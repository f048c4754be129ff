package form

import (
	"errors"
	"strings"
	"testing"
)

func TestIsValid_MissingRequired(t *testing.T) {
	blanks := []string{"", " ", "\t", "  \n "}

	for _, field := range []Field{FieldFirstName, FieldLastName, FieldEmail} {
		for _, blank := range blanks {
			f := New()
			f.SetField(FieldFirstName, "Ada")
			f.SetField(FieldLastName, "Lovelace")
			f.SetField(FieldEmail, "ada@example.com")
			f.SetField(FieldBusinessName, "Analytical Engines")

			f.SetField(field, blank)

			if f.IsValid() {
				t.Errorf("IsValid() = true with %s = %q, want false", field, blank)
			}
			if err := f.Validate(); err == nil {
				t.Errorf("Validate() = nil with %s = %q", field, blank)
			}
		}
	}
}

func TestIsValid_BusinessNameIgnored(t *testing.T) {
	for _, business := range []string{"", "   ", "Analytical Engines"} {
		f := New()
		f.SetField(FieldFirstName, "Ada")
		f.SetField(FieldLastName, "Lovelace")
		f.SetField(FieldEmail, "ada@example.com")
		f.SetField(FieldBusinessName, business)

		if !f.IsValid() {
			t.Errorf("IsValid() = false with businessName = %q, want true", business)
		}
		if err := f.Validate(); err != nil {
			t.Errorf("Validate() = %v with businessName = %q", err, business)
		}
	}
}

func TestIsValid_EmptyForm(t *testing.T) {
	var f Form
	if f.IsValid() {
		t.Error("zero Form should not be valid")
	}
}

func TestSetField_NoTrimming(t *testing.T) {
	f := New()
	f.SetField(FieldFirstName, "  Ada ")

	if got := f.Draft().FirstName; got != "  Ada " {
		t.Errorf("FirstName = %q, want value as typed", got)
	}
}

func TestReset(t *testing.T) {
	f := New()
	for _, field := range Fields {
		f.SetField(field, "x")
	}

	f.Reset()

	if !f.Draft().IsZero() {
		t.Errorf("Draft() after Reset = %+v, want all empty", f.Draft())
	}
}

func TestValidate_ListsAllMissing(t *testing.T) {
	f := New()
	f.SetField(FieldLastName, "Lovelace")

	err := f.Validate()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}

	if len(vErr.Missing) != 2 || vErr.Missing[0] != FieldFirstName || vErr.Missing[1] != FieldEmail {
		t.Errorf("Missing = %v, want [firstName email]", vErr.Missing)
	}

	if !strings.Contains(err.Error(), "First Name, Email Address") {
		t.Errorf("Error() = %s, want listed labels", err.Error())
	}
}

func TestDraft_Customer(t *testing.T) {
	d := Draft{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	c := d.Customer()

	if c.FirstName != "Ada" || c.LastName != "Lovelace" || c.Email != "ada@example.com" {
		t.Errorf("Customer() = %+v", c)
	}
	if c.BusinessName != "" {
		t.Errorf("BusinessName = %q, want empty", c.BusinessName)
	}
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(f.String())
		if err != nil {
			t.Errorf("ParseField(%s) error = %v", f, err)
		}
		if got != f {
			t.Errorf("ParseField(%s) = %v", f, got)
		}
	}

	if _, err := ParseField("phone"); err == nil {
		t.Error("ParseField(phone) should fail")
	}
}

func TestField_Placeholder(t *testing.T) {
	tests := []struct {
		f    Field
		want string
	}{
		{FieldFirstName, "First Name *"},
		{FieldLastName, "Last Name *"},
		{FieldBusinessName, "Business Name"},
		{FieldEmail, "Email Address *"},
	}

	for _, tt := range tests {
		if got := tt.f.Placeholder(); got != tt.want {
			t.Errorf("Placeholder() = %q, want %q", got, tt.want)
		}
	}
}
