package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mehul-pande/accountgate/internal/billing"
	"github.com/mehul-pande/accountgate/internal/domain/subscription"
	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/logger"
	"github.com/mehul-pande/accountgate/internal/pkg/metrics"
)

// subscriptionEventPrefix selects the event family that drives local
// reconciliation. Everything else is acknowledged without state change.
const subscriptionEventPrefix = "customer.subscription."

// BillingService implements billing.Service
type BillingService struct {
	users    user.Repository
	subs     subscription.Repository
	provider billing.Provider
	logger   *logger.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(users user.Repository, subs subscription.Repository, provider billing.Provider, log *logger.Logger) billing.Service {
	return &BillingService{
		users:    users,
		subs:     subs,
		provider: provider,
		logger:   log,
	}
}

// CheckoutSession creates a subscription checkout session, provisioning
// a processor customer the first time a user checks out. The customer
// column is filled only when NULL, so a concurrent first checkout cannot
// attach two customers to one user.
func (s *BillingService) CheckoutSession(ctx context.Context, userID string, req billing.CheckoutRequest) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.AsAppError(err).Code == errors.ErrCodeNotFound {
			return "", errors.UserNotFound(userID)
		}
		return "", err
	}

	customerID, err := s.ensureCustomer(ctx, u)
	if err != nil {
		return "", err
	}

	url, err := s.provider.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID: customerID,
		PriceID:    req.PriceID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		return "", errors.Internal("Failed to create checkout session", err)
	}

	metrics.RecordCheckoutSession()

	s.logger.WithFields(map[string]interface{}{
		"user_id":     userID,
		"customer_id": customerID,
		"price_id":    req.PriceID,
	}).Info("Checkout session created")

	return url, nil
}

// ensureCustomer returns the user's processor customer id, creating one
// lazily on first checkout.
func (s *BillingService) ensureCustomer(ctx context.Context, u *user.User) (string, error) {
	if u.StripeCustomerID != nil {
		return *u.StripeCustomerID, nil
	}

	customerID, err := s.provider.CreateCustomer(ctx, u.Email, u.Name)
	if err != nil {
		return "", errors.Internal("Failed to create billing customer", err)
	}

	set, err := s.users.SetStripeCustomerID(ctx, u.ID, customerID)
	if err != nil {
		return "", err
	}
	if !set {
		// Lost the race to a concurrent checkout; use the id that won.
		fresh, err := s.users.GetByID(ctx, u.ID)
		if err != nil {
			return "", err
		}
		if fresh.StripeCustomerID == nil {
			return "", errors.Internal("customer id missing after provisioning race", nil)
		}
		s.logger.WithFields(map[string]interface{}{
			"user_id":            u.ID,
			"orphaned_customer":  customerID,
			"persisted_customer": *fresh.StripeCustomerID,
		}).Warn("Concurrent customer provisioning; keeping first persisted id")
		return *fresh.StripeCustomerID, nil
	}

	return customerID, nil
}

// PortalSession creates a billing-portal session. It requires a customer
// to already exist; portal access before any checkout is an error.
func (s *BillingService) PortalSession(ctx context.Context, userID, returnURL string) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.AsAppError(err).Code == errors.ErrCodeNotFound {
			return "", errors.UserNotFound(userID)
		}
		return "", err
	}

	if u.StripeCustomerID == nil {
		return "", errors.NoStripeCustomer()
	}

	url, err := s.provider.CreatePortalSession(ctx, *u.StripeCustomerID, returnURL)
	if err != nil {
		return "", errors.Internal("Failed to create portal session", err)
	}
	return url, nil
}

// webhookSubscription is the slice of the processor's subscription
// object this service reads. Decoding a local struct from the raw event
// payload keeps reconciliation independent of SDK object changes.
type webhookSubscription struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// HandleWebhook verifies the event signature and reconciles local state
// for customer.subscription.* events. Reconciliation always applies the
// received event's status; out-of-order delivery can therefore regress
// role state until the next event arrives.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if strings.TrimSpace(signature) == "" {
		return errors.MissingSignature()
	}

	event, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		return errors.Internal("Webhook signature verification failed", err)
	}

	eventType := string(event.Type)
	if !strings.HasPrefix(eventType, subscriptionEventPrefix) {
		metrics.RecordWebhookEvent(eventType, "ignored")
		s.logger.WithFields(map[string]interface{}{
			"event_id": event.ID,
			"type":     eventType,
		}).Debug("Webhook event ignored (unhandled type)")
		return nil
	}

	var sub webhookSubscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		metrics.RecordWebhookEvent(eventType, "error")
		return errors.Internal("Failed to decode subscription event", fmt.Errorf("decode subscription: %w", err))
	}
	if sub.Customer == "" {
		metrics.RecordWebhookEvent(eventType, "error")
		return errors.Internal("Subscription event missing customer", nil)
	}

	u, err := s.users.GetByStripeCustomerID(ctx, sub.Customer)
	if err != nil {
		metrics.RecordWebhookEvent(eventType, "error")
		if errors.AsAppError(err).Code == errors.ErrCodeNotFound {
			return errors.UnknownCustomer(sub.Customer)
		}
		return err
	}

	periodEnd := sub.CurrentPeriodEnd
	planID := ""
	if len(sub.Items.Data) > 0 {
		planID = sub.Items.Data[0].Price.ID
		if periodEnd == 0 {
			periodEnd = sub.Items.Data[0].CurrentPeriodEnd
		}
	}

	if err := s.subs.Upsert(ctx, &subscription.Subscription{
		ID:               sub.ID,
		UserID:           u.ID,
		Status:           sub.Status,
		PlanID:           planID,
		CurrentPeriodEnd: periodEnd,
	}); err != nil {
		metrics.RecordWebhookEvent(eventType, "error")
		return err
	}

	role := user.RoleFree
	if subscription.GrantsPro(sub.Status) {
		role = user.RolePro
	}
	if err := s.users.SetRole(ctx, u.ID, role); err != nil {
		metrics.RecordWebhookEvent(eventType, "error")
		return err
	}

	metrics.RecordWebhookEvent(eventType, "processed")

	s.logger.WithFields(map[string]interface{}{
		"event_id":        event.ID,
		"type":            eventType,
		"user_id":         u.ID,
		"subscription_id": sub.ID,
		"status":          sub.Status,
		"role":            role,
	}).Info("Subscription event processed")

	return nil
}
