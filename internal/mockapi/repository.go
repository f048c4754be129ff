package mockapi

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/muurk/customers/internal/api"
)

// ErrDuplicateEmail is returned by Create when the email is already taken
var ErrDuplicateEmail = errors.New("a customer with this email already exists")

// Repository stores customers in insertion order
type Repository interface {
	List(ctx context.Context) (api.CustomerList, error)
	Create(ctx context.Context, customer api.Customer) (api.Customer, error)
	Close() error
}

// SeedCustomers is the sample data loaded by --seed
var SeedCustomers = api.CustomerList{
	{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", BusinessName: "Navy Computing"},
	{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
	{FirstName: "Katherine", LastName: "Johnson", Email: "katherine@example.com", BusinessName: "NASA"},
}

// emailKey normalizes an email for uniqueness checks
func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalize trims the submitted values before they are stored
func normalize(c api.Customer) api.Customer {
	return api.Customer{
		FirstName:    strings.TrimSpace(c.FirstName),
		LastName:     strings.TrimSpace(c.LastName),
		Email:        strings.TrimSpace(c.Email),
		BusinessName: strings.TrimSpace(c.BusinessName),
	}
}

// Seed creates every customer in seed when repo is empty
func Seed(ctx context.Context, repo Repository, seed api.CustomerList) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, c := range seed {
		if _, err := repo.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// MemoryRepository keeps customers in process memory
type MemoryRepository struct {
	mu        sync.RWMutex
	customers api.CustomerList
	emails    map[string]bool
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		customers: api.CustomerList{},
		emails:    make(map[string]bool),
	}
}

// List returns a copy of all customers
func (r *MemoryRepository) List(ctx context.Context) (api.CustomerList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(api.CustomerList, len(r.customers))
	copy(out, r.customers)
	return out, nil
}

// Create appends customer unless its email is taken
func (r *MemoryRepository) Create(ctx context.Context, customer api.Customer) (api.Customer, error) {
	if err := ctx.Err(); err != nil {
		return api.Customer{}, err
	}
	c := normalize(customer)
	key := emailKey(c.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emails[key] {
		return api.Customer{}, ErrDuplicateEmail
	}
	r.emails[key] = true
	r.customers = append(r.customers, c)
	return c, nil
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
