package billing

import "context"

// CheckoutRequest carries the checkout inputs from the API layer.
type CheckoutRequest struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Service is the billing business logic consumed by the API layer.
type Service interface {
	// CheckoutSession lazily provisions a processor customer for the
	// user and returns a checkout redirect URL
	CheckoutSession(ctx context.Context, userID string, req CheckoutRequest) (string, error)

	// PortalSession returns a billing-portal URL for an existing customer
	PortalSession(ctx context.Context, userID, returnURL string) (string, error)

	// HandleWebhook verifies and ingests a processor webhook event,
	// reconciling local subscription and role state
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
