package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mehul-pande/accountgate/internal/domain/subscription"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
)

// SubscriptionRepository implements subscription.Repository
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB) subscription.Repository {
	return &SubscriptionRepository{db: db}
}

// Upsert inserts or updates a subscription keyed by its processor id,
// so replayed webhook events leave exactly one row.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	now := time.Now().Unix()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, status, plan_id, current_period_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			status = excluded.status,
			plan_id = excluded.plan_id,
			current_period_end = excluded.current_period_end,
			updated_at = excluded.updated_at
	`, sub.ID, sub.UserID, sub.Status, sub.PlanID, sub.CurrentPeriodEnd, now, now)
	if err != nil {
		return errors.DatabaseError("Failed to upsert subscription", err)
	}
	return nil
}

// GetByID retrieves a subscription by its processor id
func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, plan_id, current_period_end, created_at, updated_at
		FROM subscriptions WHERE id = ?
	`, id)

	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Subscription")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get subscription", err)
	}
	return sub, nil
}

// LatestForUser retrieves the most recently updated subscription for a
// user, or nil when the user has none.
func (r *SubscriptionRepository) LatestForUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, plan_id, current_period_end, created_at, updated_at
		FROM subscriptions
		WHERE user_id = ?
		ORDER BY updated_at DESC, id DESC
		LIMIT 1
	`, userID)

	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get latest subscription", err)
	}
	return sub, nil
}

func scanSubscription(row rowScanner) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	var createdAt, updatedAt int64

	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Status, &sub.PlanID, &sub.CurrentPeriodEnd, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.CreatedAt = time.Unix(createdAt, 0)
	sub.UpdatedAt = time.Unix(updatedAt, 0)

	return &sub, nil
}
