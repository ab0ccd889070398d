package user

import "time"

// User represents a user in the system. One row exists per email; the id
// is assigned server-side on first creation and never changes.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             *string   `json:"name,omitempty"`
	AvatarURL        *string   `json:"avatar_url,omitempty"`
	Role             string    `json:"role"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty"`
	PasswordHash     string    `json:"-"` // Not exposed in JSON
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Roles, derived from subscription status
const (
	RoleFree = "free"
	RolePro  = "pro"
)

// Identity is the authenticated identity an issuer callback hands over
// for upserting.
type Identity struct {
	Email     string
	Name      *string
	AvatarURL *string
}
