package handlers

import (
	"net/http"

	"github.com/mehul-pande/accountgate/internal/api/dto"
	"github.com/mehul-pande/accountgate/internal/api/middleware"
	"github.com/mehul-pande/accountgate/internal/domain/user"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/logger"
	"github.com/mehul-pande/accountgate/internal/pkg/utils"
)

// UserHandler handles profile endpoints
type UserHandler struct {
	userService user.Service
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService user.Service, log *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      log,
	}
}

// Me returns the authenticated user's profile together with their
// latest subscription.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing session subject"))
		return
	}

	profile, err := h.userService.Profile(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, errors.AsAppError(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.ProfileResponse{
		ID:               profile.User.ID,
		Email:            profile.User.Email,
		Name:             profile.User.Name,
		AvatarURL:        profile.User.AvatarURL,
		Role:             profile.User.Role,
		StripeCustomerID: profile.User.StripeCustomerID,
		Subscription:     dto.NewSubscriptionDTO(profile.Subscription),
	})
}
