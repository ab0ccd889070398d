package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mehul-pande/accountgate/internal/api/dto"
	"github.com/mehul-pande/accountgate/internal/auth"
	"github.com/mehul-pande/accountgate/internal/config"
	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/logger"
	"github.com/mehul-pande/accountgate/internal/pkg/utils"
	"github.com/mehul-pande/accountgate/internal/pkg/validator"
)

const stateCookie = "oauth_state"

// AuthHandler owns the issuer surface: OAuth authorize/callback,
// password register/login and token issuance.
type AuthHandler struct {
	userService user.Service
	oauth       *auth.OAuth
	config      *config.Config
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userService user.Service,
	oauth *auth.OAuth,
	cfg *config.Config,
	log *logger.Logger,
	val *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		oauth:       oauth,
		config:      cfg,
		logger:      log,
		validator:   val,
	}
}

// Register handles password registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	u, err := h.userService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	h.respondWithSession(w, u, http.StatusCreated)
}

// Login handles password login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"email": req.Email,
		}).Warn("Authentication failed")
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	// Every successful login refreshes the durable user row.
	u, err = h.userService.GetOrCreate(r.Context(), user.Identity{
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	})
	if err != nil {
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	h.respondWithSession(w, u, http.StatusOK)
}

// Token exchanges valid password credentials for a fresh session token.
// It is the issuer's token endpoint; the response carries only the token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	token, err := auth.MintSession(u.ID, u.Email, h.config.Auth.JWTSecret, h.config.Auth.SessionExpiry)
	if err != nil {
		utils.WriteError(w, errors.Internal("Failed to mint session", err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// OAuthAuthorize redirects the caller to the provider's consent page.
func (h *AuthHandler) OAuthAuthorize(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state := auth.RandomState()
	url, err := h.oauth.AuthCodeURL(provider, state)
	if err != nil {
		utils.WriteError(w, errors.New(errors.ErrCodeNotFound, "unknown oauth provider", http.StatusNotFound))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		HttpOnly: true,
		Secure:   h.config.Server.Environment == "production",
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   300,
	})

	http.Redirect(w, r, url, http.StatusFound)
}

// OAuthCallback exchanges the provider code, upserts the user and
// redirects to the frontend with a session token.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || state == "" || cookie.Value != state {
		utils.WriteError(w, errors.Unauthorized("OAuth state mismatch"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteError(w, errors.BadRequest("Missing authorization code"))
		return
	}

	identity, err := h.oauth.Exchange(r.Context(), provider, code)
	if err != nil {
		h.logger.ErrorWithErr(err, "OAuth exchange failed")
		utils.WriteError(w, errors.Internal("OAuth exchange failed", err))
		return
	}

	u, err := h.userService.GetOrCreate(r.Context(), identity)
	if err != nil {
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	token, err := auth.MintSession(u.ID, u.Email, h.config.Auth.JWTSecret, h.config.Auth.SessionExpiry)
	if err != nil {
		utils.WriteError(w, errors.Internal("Failed to mint session", err))
		return
	}

	http.Redirect(w, r, fmt.Sprintf("%s/auth/complete#token=%s", h.config.Server.FrontendURL, token), http.StatusFound)
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, u *user.User, status int) {
	token, err := auth.MintSession(u.ID, u.Email, h.config.Auth.JWTSecret, h.config.Auth.SessionExpiry)
	if err != nil {
		utils.WriteError(w, errors.Internal("Failed to mint session", err))
		return
	}

	utils.WriteJSON(w, status, dto.AuthResponse{
		Token: token,
		User: &dto.UserDTO{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			Role:      u.Role,
		},
	})
}
