package dto

import "github.com/mehul-pande/accountgate/internal/domain/subscription"

// ProfileResponse is the /api/user/me payload
type ProfileResponse struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	Name             *string          `json:"name"`
	AvatarURL        *string          `json:"avatar_url"`
	Role             string           `json:"role"`
	StripeCustomerID *string          `json:"stripe_customer_id"`
	Subscription     *SubscriptionDTO `json:"subscription"`
}

// SubscriptionDTO is the embedded subscription record
type SubscriptionDTO struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	PlanID           string `json:"plan_id"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// NewSubscriptionDTO maps a domain subscription, tolerating nil
func NewSubscriptionDTO(sub *subscription.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:               sub.ID,
		Status:           sub.Status,
		PlanID:           sub.PlanID,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}
}
