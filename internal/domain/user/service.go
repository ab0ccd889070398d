package user

import (
	"context"

	"github.com/mehul-pande/accountgate/internal/domain/subscription"
)

// Profile is a user together with their most recent subscription, if any.
type Profile struct {
	User         *User                      `json:"user"`
	Subscription *subscription.Subscription `json:"subscription"`
}

// Service defines the interface for user business logic
type Service interface {
	// GetOrCreate upserts a user from an authenticated identity and
	// returns the durable row. Called on every successful login.
	GetOrCreate(ctx context.Context, identity Identity) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// Profile retrieves a user and their latest subscription
	Profile(ctx context.Context, id string) (*Profile, error)

	// Register creates a password-backed user
	Register(ctx context.Context, email, password string, name *string) (*User, error)

	// Authenticate verifies email/password credentials
	Authenticate(ctx context.Context, email, password string) (*User, error)
}
