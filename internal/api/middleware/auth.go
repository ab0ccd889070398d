package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mehul-pande/accountgate/internal/auth"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// UserIDKey is the context key for the session subject's user id
	UserIDKey ContextKey = "userID"
	// UserEmailKey is the context key for the session subject's email
	UserEmailKey ContextKey = "email"
)

// Session returns a middleware that resolves the caller's session
// subject from the Authorization header. A request without a bearer
// token is rejected as UNAUTHORIZED; a token the issuer cannot validate
// is rejected as INVALID_TOKEN. Both map to 401.
func Session(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			var tokenStr string

			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					tokenStr = parts[1]
				}
			}

			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			claims, err := auth.ParseClaims(tokenStr, jwtSecret)
			if err != nil {
				utils.WriteError(w, errors.InvalidToken(err))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the session subject's user id from the context
func GetUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	return userID, ok
}

// GetUserEmail extracts the session subject's email from the context
func GetUserEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(UserEmailKey).(string)
	return email, ok
}
