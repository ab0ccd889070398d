package services

import (
	"context"

	"github.com/mehul-pande/accountgate/internal/auth"
	"github.com/mehul-pande/accountgate/internal/domain/subscription"
	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/logger"
)

// UserService implements user.Service
type UserService struct {
	users      user.Repository
	subs       subscription.Repository
	bcryptCost int
	logger     *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(users user.Repository, subs subscription.Repository, bcryptCost int, log *logger.Logger) user.Service {
	return &UserService{
		users:      users,
		subs:       subs,
		bcryptCost: bcryptCost,
		logger:     log,
	}
}

// GetOrCreate upserts a user from an authenticated identity. Existing
// rows keep their id, role and customer reference; name and avatar are
// overwritten on every login.
func (s *UserService) GetOrCreate(ctx context.Context, identity user.Identity) (*user.User, error) {
	if identity.Email == "" {
		return nil, errors.InvalidInput("email is required")
	}

	u, err := s.users.Upsert(ctx, identity)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to upsert user")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("User upserted")

	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

// Profile retrieves a user and their latest subscription
func (s *UserService) Profile(ctx context.Context, id string) (*user.Profile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.AsAppError(err).Code == errors.ErrCodeNotFound {
			return nil, errors.UserNotFound(id)
		}
		return nil, err
	}

	sub, err := s.subs.LatestForUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return &user.Profile{User: u, Subscription: sub}, nil
}

// Register creates a password-backed user. An email that already has a
// password is rejected before any write, so a failed registration
// cannot touch the existing account's profile.
func (s *UserService) Register(ctx context.Context, email, password string, name *string) (*user.User, error) {
	if email == "" {
		return nil, errors.InvalidInput("email is required")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.PasswordHash != "" {
		return nil, errors.Conflict("account already registered")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	u, err := s.users.Upsert(ctx, user.Identity{Email: email, Name: name})
	if err != nil {
		return nil, err
	}
	if u.PasswordHash != "" {
		return nil, errors.Conflict("account already registered")
	}

	if err := s.users.SetPasswordHash(ctx, u.ID, hash); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("User registered")

	return u, nil
}

// Authenticate verifies email/password credentials
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Unauthorized("Invalid credentials")
	}
	if u.PasswordHash == "" || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, errors.Unauthorized("Invalid credentials")
	}
	return u, nil
}
