package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mehul-pande/accountgate/internal/api/dto"
	"github.com/mehul-pande/accountgate/internal/api/middleware"
	"github.com/mehul-pande/accountgate/internal/billing"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/logger"
	"github.com/mehul-pande/accountgate/internal/pkg/utils"
	"github.com/mehul-pande/accountgate/internal/pkg/validator"
)

// webhookBodyLimit caps webhook payload reads; processor events are
// small and an unbounded read is an easy abuse vector.
const webhookBodyLimit = 1 << 20 // 1MiB

// BillingHandler handles subscription and webhook endpoints
type BillingHandler struct {
	billingService billing.Service
	logger         *logger.Logger
	validator      *validator.Validator
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService billing.Service, log *logger.Logger, val *validator.Validator) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		logger:         log,
		validator:      val,
	}
}

// CreateCheckoutSession creates a subscription checkout session for the
// authenticated user and returns its redirect URL.
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	userID, _ := middleware.GetUserID(r)

	url, err := h.billingService.CheckoutSession(r.Context(), userID, billing.CheckoutRequest{
		PriceID:    req.PriceID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.SessionResponse{URL: url})
}

// CreatePortalSession creates a billing-portal session for the
// authenticated user's existing customer.
func (h *BillingHandler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	var req dto.PortalSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	userID, _ := middleware.GetUserID(r)

	url, err := h.billingService.PortalSession(r.Context(), userID, req.ReturnURL)
	if err != nil {
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.SessionResponse{URL: url})
}

// HandleWebhook ingests a processor webhook event. There is no session
// check here; the processor's signature is the authentication.
func (h *BillingHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Failed to read request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	if err := h.billingService.HandleWebhook(r.Context(), payload, signature); err != nil {
		h.logger.ErrorWithErr(err, "Webhook processing failed")
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.WebhookResponse{Received: true})
}
