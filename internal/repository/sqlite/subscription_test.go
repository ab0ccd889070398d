package sqlite

import (
	"context"
	"testing"

	"github.com/mehul-pande/accountgate/internal/domain/subscription"
	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/testutil"
)

func TestSubscriptionRepository_Upsert_ReplayLeavesOneRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := NewUserRepository(db)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	u, err := users.Upsert(ctx, user.Identity{Email: "test@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	sub := &subscription.Subscription{
		ID:               "sub_1",
		UserID:           u.ID,
		Status:           subscription.StatusActive,
		PlanID:           "price_123",
		CurrentPeriodEnd: 1700000000,
	}

	if err := repo.Upsert(ctx, sub); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Replay with a later state, same processor id.
	sub.Status = subscription.StatusCanceled
	sub.CurrentPeriodEnd = 1710000000
	if err := repo.Upsert(ctx, sub); err != nil {
		t.Fatalf("replay Upsert() error = %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM subscriptions`).Scan(&count); err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	if count != 1 {
		t.Errorf("subscription rows = %d, want 1", count)
	}

	got, err := repo.GetByID(ctx, "sub_1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != subscription.StatusCanceled {
		t.Errorf("status = %v, want %v", got.Status, subscription.StatusCanceled)
	}
	if got.CurrentPeriodEnd != 1710000000 {
		t.Errorf("period end = %v, want 1710000000", got.CurrentPeriodEnd)
	}
}

func TestSubscriptionRepository_LatestForUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := NewUserRepository(db)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	u, err := users.Upsert(ctx, user.Identity{Email: "test@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	t.Run("no subscriptions", func(t *testing.T) {
		got, err := repo.LatestForUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("LatestForUser() error = %v", err)
		}
		if got != nil {
			t.Errorf("LatestForUser() = %v, want nil", got)
		}
	})

	t.Run("returns latest", func(t *testing.T) {
		for _, sub := range []*subscription.Subscription{
			{ID: "sub_1", UserID: u.ID, Status: subscription.StatusCanceled},
			{ID: "sub_2", UserID: u.ID, Status: subscription.StatusActive},
		} {
			if err := repo.Upsert(ctx, sub); err != nil {
				t.Fatalf("Upsert(%s) error = %v", sub.ID, err)
			}
		}

		got, err := repo.LatestForUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("LatestForUser() error = %v", err)
		}
		if got == nil || got.ID != "sub_2" {
			t.Errorf("LatestForUser() = %+v, want sub_2", got)
		}
	})
}
