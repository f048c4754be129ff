package api

import "strings"

// CustomersPath is the collection endpoint for listing and creating customers
const CustomersPath = "/api/customers"

// Customer is a single customer record as exchanged with the backend
type Customer struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	BusinessName string `json:"businessName,omitempty"`
}

// CustomerList is the ordered collection returned by the backend.
// Order is whatever the server returns; the client never sorts it.
type CustomerList []Customer

// Key returns the value used to identify a row in the list
func (c Customer) Key() string {
	return c.Email
}

// DisplayName returns "First Last" with surrounding whitespace removed
func (c Customer) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Count returns how many customers share the given row key
func (l CustomerList) Count(email string) int {
	n := 0
	for _, c := range l {
		if c.Key() == email {
			n++
		}
	}
	return n
}

// Contains reports whether a customer with the given row key is present
func (l CustomerList) Contains(email string) bool {
	return l.Count(email) > 0
}
