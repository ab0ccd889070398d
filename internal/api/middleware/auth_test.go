package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mehul-pande/accountgate/internal/auth"
	"github.com/mehul-pande/accountgate/internal/pkg/errors"
	"github.com/mehul-pande/accountgate/internal/pkg/utils"
)

const testSecret = "test-secret"

func TestSession(t *testing.T) {
	token, err := auth.MintSession("user-1", "test@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("MintSession() error = %v", err)
	}
	expired, err := auth.MintSession("user-1", "test@example.com", testSecret, -time.Hour)
	if err != nil {
		t.Fatalf("MintSession() error = %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCode   string
		wantNext   bool
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + token,
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
			wantCode:   errors.ErrCodeUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: "Token abc",
			wantStatus: http.StatusUnauthorized,
			wantCode:   errors.ErrCodeUnauthorized,
		},
		{
			name:       "tampered token",
			authHeader: "Bearer " + token + "x",
			wantStatus: http.StatusUnauthorized,
			wantCode:   errors.ErrCodeInvalidToken,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + expired,
			wantStatus: http.StatusUnauthorized,
			wantCode:   errors.ErrCodeInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			handler := Session(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				uid, ok := GetUserID(r)
				if !ok || uid != "user-1" {
					t.Errorf("GetUserID() = %v, %v", uid, ok)
				}
				email, ok := GetUserEmail(r)
				if !ok || email != "test@example.com" {
					t.Errorf("GetUserEmail() = %v, %v", email, ok)
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if nextCalled != tt.wantNext {
				t.Errorf("next called = %v, want %v", nextCalled, tt.wantNext)
			}
			if tt.wantCode != "" {
				var resp utils.ErrorResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if resp.Error.Code != tt.wantCode {
					t.Errorf("error code = %v, want %v", resp.Error.Code, tt.wantCode)
				}
			}
		})
	}
}
