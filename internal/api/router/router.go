package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mehul-pande/accountgate/internal/api/handlers"
	"github.com/mehul-pande/accountgate/internal/api/middleware"
	"github.com/mehul-pande/accountgate/internal/config"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/logger"
	"github.com/mehul-pande/accountgate/internal/pkg/metrics"
	"github.com/mehul-pande/accountgate/internal/pkg/utils"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Billing *handlers.BillingHandler
}

// New assembles the full HTTP surface: global middleware, the public
// issuer routes, the session-protected API group and the webhook sink.
func New(cfg *config.Config, log *logger.Logger, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, errors.New(errors.ErrCodeNotFound, "not found", http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, errors.New(errors.ErrCodeMethodNotAllowed, "method not allowed", http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", h.Health.Check)
	r.Handle("/metrics", metrics.Handler())

	// Issuer surface, no session required.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/token", h.Auth.Token)
		r.Get("/{provider}/authorize", h.Auth.OAuthAuthorize)
		r.Get("/{provider}/callback", h.Auth.OAuthCallback)
	})

	r.Route("/api", func(r chi.Router) {
		// Stripe calls this directly; verified by signature, not session.
		r.Post("/webhooks/stripe", h.Billing.HandleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Auth.JWTSecret))

			r.Get("/user/me", h.User.Me)
			r.Post("/subscriptions/checkout-session", h.Billing.CreateCheckoutSession)
			r.Post("/subscriptions/portal-session", h.Billing.CreatePortalSession)
		})
	})

	return r
}
