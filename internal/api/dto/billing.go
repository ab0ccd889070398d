package dto

// CheckoutSessionRequest is the checkout-session request body
type CheckoutSessionRequest struct {
	PriceID    string `json:"priceId" validate:"required"`
	SuccessURL string `json:"successUrl" validate:"required,url"`
	CancelURL  string `json:"cancelUrl" validate:"required,url"`
}

// PortalSessionRequest is the portal-session request body
type PortalSessionRequest struct {
	ReturnURL string `json:"returnUrl" validate:"required,url"`
}

// SessionResponse carries the processor redirect URL
type SessionResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a webhook delivery
type WebhookResponse struct {
	Received bool `json:"received"`
}
