package subscription

import "time"

// Subscription mirrors a payment-processor subscription. The id is the
// processor-assigned identifier, so replayed webhook events update the
// same row in place.
type Subscription struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Status           string    `json:"status"`
	PlanID           string    `json:"plan_id"`
	CurrentPeriodEnd int64     `json:"current_period_end"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Processor-defined statuses this service reacts to. Other values are
// stored verbatim.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// GrantsPro reports whether a status entitles the owning user to the
// pro role.
func GrantsPro(status string) bool {
	return status == StatusActive || status == StatusTrialing
}
