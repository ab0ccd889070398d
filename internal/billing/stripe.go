package billing

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/mehul-pande/accountgate/internal/config"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider configures the Stripe client with the API key.
func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	stripe.Key = cfg.APIKey
	return &StripeProvider{webhookSecret: cfg.WebhookSecret}
}

// CreateCustomer provisions a Stripe customer for the user.
func (p *StripeProvider) CreateCustomer(ctx context.Context, email string, name *string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  name,
	}
	params.Context = ctx

	c, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// CreateCheckoutSession creates a subscription-mode checkout session
// with promotion codes allowed.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(in.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:          stripe.String(in.SuccessURL),
		CancelURL:           stripe.String(in.CancelURL),
		AllowPromotionCodes: stripe.Bool(true),
	}
	params.Context = ctx

	s, err := checkoutsession.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}

// CreatePortalSession creates a billing-portal session for the customer.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := portalsession.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}

// VerifyWebhook checks the Stripe-Signature header against the signing
// secret and returns the decoded event.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
