package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
)

// UserRepository implements user.Repository
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) user.Repository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, avatar_url, role, stripe_customer_id, password_hash, created_at, updated_at`

// Upsert inserts a user keyed by email or refreshes the mutable profile
// fields of the existing row. The insert-or-update runs as a single
// statement so concurrent logins for the same identity cannot race a
// read-then-write.
func (r *UserRepository) Upsert(ctx context.Context, identity user.Identity) (*user.User, error) {
	now := time.Now().Unix()

	query := `
		INSERT INTO users (id, email, name, avatar_url, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), identity.Email, identity.Name, identity.AvatarURL, user.RoleFree, now, now,
	)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, errors.UpsertFailed("upsert returned no row", err)
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to upsert user", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get user", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get user", err)
	}
	return u, nil
}

// GetByStripeCustomerID retrieves a user by payment customer reference
func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE stripe_customer_id = ?`, customerID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get user", err)
	}
	return u, nil
}

// SetStripeCustomerID fills the customer column only when it is still
// NULL, so a customer reference is assigned at most once per user.
func (r *UserRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET stripe_customer_id = ?, updated_at = ?
		WHERE id = ? AND stripe_customer_id IS NULL
	`, customerID, time.Now().Unix(), id)
	if err != nil {
		return false, errors.DatabaseError("Failed to set customer id", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows > 0, nil
}

// SetRole updates the derived role
func (r *UserRepository) SetRole(ctx context.Context, id, role string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET role = ?, updated_at = ? WHERE id = ?
	`, role, time.Now().Unix(), id)
	if err != nil {
		return errors.DatabaseError("Failed to set role", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("User")
	}
	return nil
}

// SetPasswordHash stores a password hash for the user
func (r *UserRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
	`, hash, time.Now().Unix(), id)
	if err != nil {
		return errors.DatabaseError("Failed to set password hash", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("User")
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	var name, avatarURL, stripeCustomerID, passwordHash sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&u.ID, &u.Email, &name, &avatarURL, &u.Role, &stripeCustomerID, &passwordHash, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if name.Valid {
		u.Name = &name.String
	}
	if avatarURL.Valid {
		u.AvatarURL = &avatarURL.String
	}
	if stripeCustomerID.Valid {
		u.StripeCustomerID = &stripeCustomerID.String
	}
	if passwordHash.Valid {
		u.PasswordHash = passwordHash.String
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)

	return &u, nil
}
