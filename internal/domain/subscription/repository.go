package subscription

import "context"

// Repository defines the interface for subscription data access
type Repository interface {
	// Upsert inserts or updates a subscription keyed by its processor id
	Upsert(ctx context.Context, sub *Subscription) error

	// GetByID retrieves a subscription by its processor id
	GetByID(ctx context.Context, id string) (*Subscription, error)

	// LatestForUser retrieves the most recently updated subscription for
	// a user, or nil when none exists.
	LatestForUser(ctx context.Context, userID string) (*Subscription, error)
}
