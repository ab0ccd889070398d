package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Upsert atomically inserts a user keyed by email, or updates name,
	// avatar_url and updated_at when the email already exists. The id,
	// role and stripe_customer_id of an existing row are left untouched.
	Upsert(ctx context.Context, identity Identity) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByStripeCustomerID retrieves a user by payment customer reference
	GetByStripeCustomerID(ctx context.Context, customerID string) (*User, error)

	// SetStripeCustomerID fills the stripe_customer_id column if and only
	// if it is still unset. It reports whether the write took effect.
	SetStripeCustomerID(ctx context.Context, id, customerID string) (bool, error)

	// SetRole updates the derived role
	SetRole(ctx context.Context, id, role string) error

	// SetPasswordHash stores a password hash for the user
	SetPasswordHash(ctx context.Context, id, hash string) error
}
