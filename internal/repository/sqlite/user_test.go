package sqlite

import (
	"context"
	"testing"

	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestUserRepository_Upsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, user.Identity{
		Email:     "test@example.com",
		Name:      strPtr("First"),
		AvatarURL: strPtr("https://example.com/a.png"),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("Upsert() returned empty id")
	}
	if first.Role != user.RoleFree {
		t.Errorf("Upsert() role = %v, want %v", first.Role, user.RoleFree)
	}

	second, err := repo.Upsert(ctx, user.Identity{
		Email:     "test@example.com",
		Name:      strPtr("Second"),
		AvatarURL: strPtr("https://example.com/b.png"),
	})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Upsert() changed id on existing email: %v != %v", second.ID, first.ID)
	}
	if second.Name == nil || *second.Name != "Second" {
		t.Errorf("Upsert() name = %v, want Second", second.Name)
	}
	if second.AvatarURL == nil || *second.AvatarURL != "https://example.com/b.png" {
		t.Errorf("Upsert() avatar = %v", second.AvatarURL)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Upsert() changed created_at: %v != %v", second.CreatedAt, first.CreatedAt)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Errorf("user rows = %d, want 1", count)
	}
}

func TestUserRepository_Upsert_PreservesRoleAndCustomer(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, err := repo.Upsert(ctx, user.Identity{Email: "test@example.com"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.SetRole(ctx, u.ID, user.RolePro); err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	if _, err := repo.SetStripeCustomerID(ctx, u.ID, "cus_123"); err != nil {
		t.Fatalf("SetStripeCustomerID() error = %v", err)
	}

	again, err := repo.Upsert(ctx, user.Identity{Email: "test@example.com", Name: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if again.Role != user.RolePro {
		t.Errorf("Upsert() overwrote role: %v", again.Role)
	}
	if again.StripeCustomerID == nil || *again.StripeCustomerID != "cus_123" {
		t.Errorf("Upsert() overwrote customer id: %v", again.StripeCustomerID)
	}
}

func TestUserRepository_SetStripeCustomerID_AtMostOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, err := repo.Upsert(ctx, user.Identity{Email: "test@example.com"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	set, err := repo.SetStripeCustomerID(ctx, u.ID, "cus_first")
	if err != nil {
		t.Fatalf("SetStripeCustomerID() error = %v", err)
	}
	if !set {
		t.Fatal("first SetStripeCustomerID() = false, want true")
	}

	set, err = repo.SetStripeCustomerID(ctx, u.ID, "cus_second")
	if err != nil {
		t.Fatalf("second SetStripeCustomerID() error = %v", err)
	}
	if set {
		t.Error("second SetStripeCustomerID() = true, want false")
	}

	got, err := repo.GetByStripeCustomerID(ctx, "cus_first")
	if err != nil {
		t.Fatalf("GetByStripeCustomerID() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByStripeCustomerID() id = %v, want %v", got.ID, u.ID)
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, err := repo.Upsert(ctx, user.Identity{Email: "test@example.com"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		name    string
		lookup  func() (*user.User, error)
		wantErr bool
	}{
		{"by id", func() (*user.User, error) { return repo.GetByID(ctx, u.ID) }, false},
		{"by email", func() (*user.User, error) { return repo.GetByEmail(ctx, "test@example.com") }, false},
		{"unknown id", func() (*user.User, error) { return repo.GetByID(ctx, "missing") }, true},
		{"unknown customer", func() (*user.User, error) { return repo.GetByStripeCustomerID(ctx, "cus_none") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.lookup()
			if (err != nil) != tt.wantErr {
				t.Fatalf("lookup error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if code := errors.AsAppError(err).Code; code != errors.ErrCodeNotFound {
					t.Errorf("lookup code = %v, want %v", code, errors.ErrCodeNotFound)
				}
				return
			}
			if got.ID != u.ID {
				t.Errorf("lookup id = %v, want %v", got.ID, u.ID)
			}
		})
	}
}

func TestUserRepository_SetRole_UnknownUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)

	err := repo.SetRole(context.Background(), "missing", user.RolePro)
	if err == nil {
		t.Fatal("SetRole() expected error")
	}
	if code := errors.AsAppError(err).Code; code != errors.ErrCodeNotFound {
		t.Errorf("SetRole() code = %v, want %v", code, errors.ErrCodeNotFound)
	}
}
