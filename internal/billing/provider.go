package billing

import (
	"context"

	"github.com/stripe/stripe-go/v82"
)

// CheckoutParams are the inputs to a subscription checkout session.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Provider is the payment processor surface this service relies on.
// The Stripe implementation is the only production one; tests swap in
// a mock.
type Provider interface {
	// CreateCustomer provisions a processor customer and returns its id
	CreateCustomer(ctx context.Context, email string, name *string) (string, error)

	// CreateCheckoutSession creates a subscription-mode checkout session
	// and returns its redirect URL
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)

	// CreatePortalSession creates a billing-portal session and returns
	// its URL
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)

	// VerifyWebhook checks the payload signature and returns the decoded
	// event. Verification failure is terminal for the request.
	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)
}
