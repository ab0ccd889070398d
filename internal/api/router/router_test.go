package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mehul-pande/accountgate/internal/api/handlers"
	"github.com/mehul-pande/accountgate/internal/auth"
	"github.com/mehul-pande/accountgate/internal/config"
	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/logger"
	"github.com/mehul-pande/accountgate/internal/pkg/utils"
	"github.com/mehul-pande/accountgate/internal/pkg/validator"
	"github.com/mehul-pande/accountgate/internal/services"
	"github.com/mehul-pande/accountgate/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

type routerFixture struct {
	handler  http.Handler
	users    *testutil.MockUserRepository
	subs     *testutil.MockSubscriptionRepository
	provider *testutil.MockBillingProvider
	cfg      *config.Config
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			FrontendURL:    "http://localhost:5173",
		},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			SessionExpiry: time.Hour,
			BCryptCost:    bcrypt.MinCost,
		},
	}
	log := logger.New(logger.Config{Level: "error", Format: "json"})

	users := testutil.NewMockUserRepository()
	subs := testutil.NewMockSubscriptionRepository()
	provider := testutil.NewMockBillingProvider()

	userService := services.NewUserService(users, subs, cfg.Auth.BCryptCost, log)
	billingService := services.NewBillingService(users, subs, provider, log)
	val := validator.New()

	db := testutil.NewTestDB(t)
	h := Handlers{
		Health:  handlers.NewHealthHandler(db),
		Auth:    handlers.NewAuthHandler(userService, auth.NewOAuth(cfg.OAuth), cfg, log, val),
		User:    handlers.NewUserHandler(userService, log),
		Billing: handlers.NewBillingHandler(billingService, log, val),
	}

	return &routerFixture{
		handler:  New(cfg, log, h),
		users:    users,
		subs:     subs,
		provider: provider,
		cfg:      cfg,
	}
}

func (f *routerFixture) seedSession(t *testing.T, email string) (*user.User, string) {
	t.Helper()
	u, err := f.users.Upsert(context.Background(), user.Identity{Email: email})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := auth.MintSession(u.ID, u.Email, f.cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("mint session: %v", err)
	}
	return u, token
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRouter_UnmatchedPath(t *testing.T) {
	f := newRouterFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	f := newRouterFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}

	var resp utils.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error.Code != errors.ErrCodeMethodNotAllowed {
		t.Errorf("error code = %v, want %v", resp.Error.Code, errors.ErrCodeMethodNotAllowed)
	}
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	f := newRouterFixture(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user/me"},
		{http.MethodPost, "/api/subscriptions/checkout-session"},
		{http.MethodPost, "/api/subscriptions/portal-session"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			f.handler.ServeHTTP(rr, httptest.NewRequest(rt.method, rt.path, nil))

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}

	// Rejected requests must not touch the store or the processor.
	if len(f.users.Users) != 0 {
		t.Errorf("user rows after rejected requests = %d, want 0", len(f.users.Users))
	}
	if f.provider.CreateCustomerCalls != 0 {
		t.Errorf("CreateCustomer calls = %d, want 0", f.provider.CreateCustomerCalls)
	}
}

func TestRouter_Me(t *testing.T) {
	f := newRouterFixture(t)
	u, token := f.seedSession(t, "test@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var body struct {
		ID           string      `json:"id"`
		Email        string      `json:"email"`
		Role         string      `json:"role"`
		Subscription interface{} `json:"subscription"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID != u.ID {
		t.Errorf("id = %v, want %v", body.ID, u.ID)
	}
	if body.Email != "test@example.com" {
		t.Errorf("email = %v", body.Email)
	}
	if body.Role != user.RoleFree {
		t.Errorf("role = %v, want %v", body.Role, user.RoleFree)
	}
	if body.Subscription != nil {
		t.Errorf("subscription = %v, want null", body.Subscription)
	}
}

func TestRouter_CheckoutSession(t *testing.T) {
	f := newRouterFixture(t)
	_, token := f.seedSession(t, "test@example.com")

	body := `{"priceId":"price_123","successUrl":"https://app.example.com/done","cancelUrl":"https://app.example.com/cancel"}`
	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions/checkout-session", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.URL != f.provider.CheckoutURL {
		t.Errorf("url = %v, want %v", resp.URL, f.provider.CheckoutURL)
	}
}

func TestRouter_CheckoutSession_InvalidBody(t *testing.T) {
	f := newRouterFixture(t)
	_, token := f.seedSession(t, "test@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions/checkout-session", strings.NewReader(`{"priceId":""}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if f.provider.CheckoutCalls != 0 {
		t.Errorf("checkout calls = %d, want 0", f.provider.CheckoutCalls)
	}
}

func TestRouter_Webhook(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	u, _ := f.seedSession(t, "test@example.com")
	if _, err := f.users.SetStripeCustomerID(ctx, u.ID, "cus_mock"); err != nil {
		t.Fatalf("SetStripeCustomerID() error = %v", err)
	}

	t.Run("missing signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader("{}"))
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
		}
	})

	t.Run("subscription event flips role", func(t *testing.T) {
		f.provider.Event = testutil.SubscriptionEvent("customer.subscription.updated", "sub_1", "cus_mock", "active", "price_123", 1700000000)

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader("{}"))
		req.Header.Set("Stripe-Signature", "sig")
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
		}

		var resp struct {
			Received bool `json:"received"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if !resp.Received {
			t.Error("received = false, want true")
		}

		stored, _ := f.users.GetByID(ctx, u.ID)
		if stored.Role != user.RolePro {
			t.Errorf("role = %v, want %v", stored.Role, user.RolePro)
		}
	})
}
