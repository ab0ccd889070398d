package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/mehul-pande/accountgate/internal/billing"
	"github.com/mehul-pande/accountgate/internal/domain/subscription"
	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users       map[string]*user.User
	EmailIndex  map[string]*user.User
	NextID      int
	UpsertError error
	GetError    error
	SetError    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[string]*user.User),
		EmailIndex: make(map[string]*user.User),
		NextID:     1,
	}
}

func (m *MockUserRepository) Upsert(ctx context.Context, identity user.Identity) (*user.User, error) {
	if m.UpsertError != nil {
		return nil, m.UpsertError
	}
	now := time.Now()
	if existing, ok := m.EmailIndex[identity.Email]; ok {
		existing.Name = identity.Name
		existing.AvatarURL = identity.AvatarURL
		existing.UpdatedAt = now
		return existing, nil
	}
	u := &user.User{
		ID:        fmt.Sprintf("user-%d", m.NextID),
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: identity.AvatarURL,
		Role:      user.RoleFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.NextID++
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return u, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return u, nil
}

func (m *MockUserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			return u, nil
		}
	}
	return nil, errors.NotFound("User")
}

func (m *MockUserRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) (bool, error) {
	if m.SetError != nil {
		return false, m.SetError
	}
	u, ok := m.Users[id]
	if !ok {
		return false, errors.NotFound("User")
	}
	if u.StripeCustomerID != nil {
		return false, nil
	}
	u.StripeCustomerID = &customerID
	u.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockUserRepository) SetRole(ctx context.Context, id, role string) error {
	if m.SetError != nil {
		return m.SetError
	}
	u, ok := m.Users[id]
	if !ok {
		return errors.NotFound("User")
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MockUserRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	if m.SetError != nil {
		return m.SetError
	}
	u, ok := m.Users[id]
	if !ok {
		return errors.NotFound("User")
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

// MockSubscriptionRepository is a mock implementation of subscription.Repository
type MockSubscriptionRepository struct {
	Subscriptions map[string]*subscription.Subscription
	UpsertError   error
	GetError      error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{
		Subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (m *MockSubscriptionRepository) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	copied := *sub
	m.Subscriptions[sub.ID] = &copied
	return nil
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	sub, ok := m.Subscriptions[id]
	if !ok {
		return nil, errors.NotFound("Subscription")
	}
	return sub, nil
}

func (m *MockSubscriptionRepository) LatestForUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	var latest *subscription.Subscription
	for _, sub := range m.Subscriptions {
		if sub.UserID != userID {
			continue
		}
		if latest == nil || sub.UpdatedAt.After(latest.UpdatedAt) {
			latest = sub
		}
	}
	return latest, nil
}

// MockBillingProvider is a mock implementation of billing.Provider
type MockBillingProvider struct {
	CustomerID           string
	CheckoutURL          string
	PortalURL            string
	Event                stripe.Event
	CreateCustomerCalls  int
	CheckoutCalls        int
	PortalCalls          int
	LastCheckoutParams   billing.CheckoutParams
	CreateCustomerError  error
	CheckoutSessionError error
	PortalSessionError   error
	VerifyError          error
}

func NewMockBillingProvider() *MockBillingProvider {
	return &MockBillingProvider{
		CustomerID:  "cus_mock",
		CheckoutURL: "https://checkout.example.com/session",
		PortalURL:   "https://billing.example.com/portal",
	}
}

func (m *MockBillingProvider) CreateCustomer(ctx context.Context, email string, name *string) (string, error) {
	m.CreateCustomerCalls++
	if m.CreateCustomerError != nil {
		return "", m.CreateCustomerError
	}
	return m.CustomerID, nil
}

func (m *MockBillingProvider) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (string, error) {
	m.CheckoutCalls++
	m.LastCheckoutParams = params
	if m.CheckoutSessionError != nil {
		return "", m.CheckoutSessionError
	}
	return m.CheckoutURL, nil
}

func (m *MockBillingProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	m.PortalCalls++
	if m.PortalSessionError != nil {
		return "", m.PortalSessionError
	}
	return m.PortalURL, nil
}

func (m *MockBillingProvider) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if m.VerifyError != nil {
		return stripe.Event{}, m.VerifyError
	}
	return m.Event, nil
}

// SubscriptionEvent builds a verified-looking webhook event carrying a
// subscription object, for driving MockBillingProvider.Event.
func SubscriptionEvent(eventType, subID, customerID, status, priceID string, periodEnd int64) stripe.Event {
	raw := fmt.Sprintf(`{
		"id": %q,
		"customer": %q,
		"status": %q,
		"current_period_end": %d,
		"items": {"data": [{"current_period_end": %d, "price": {"id": %q}}]}
	}`, subID, customerID, status, periodEnd, periodEnd, priceID)

	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: []byte(raw)},
	}
}
