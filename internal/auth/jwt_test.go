package auth

import (
	"testing"
	"time"
)

func TestMintAndParseSession(t *testing.T) {
	token, err := MintSession("user-1", "test@example.com", "secret", time.Hour)
	if err != nil {
		t.Fatalf("MintSession() error = %v", err)
	}

	claims, err := ParseClaims(token, "secret")
	if err != nil {
		t.Fatalf("ParseClaims() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("uid = %v, want user-1", claims.UserID)
	}
	if claims.Email != "test@example.com" {
		t.Errorf("email = %v, want test@example.com", claims.Email)
	}
}

func TestParseClaims_Invalid(t *testing.T) {
	valid, err := MintSession("user-1", "test@example.com", "secret", time.Hour)
	if err != nil {
		t.Fatalf("MintSession() error = %v", err)
	}
	expired, err := MintSession("user-1", "test@example.com", "secret", -time.Hour)
	if err != nil {
		t.Fatalf("MintSession() error = %v", err)
	}

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other-secret"},
		{"expired token", expired, "secret"},
		{"garbage token", "not.a.token", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClaims(tt.token, tt.secret); err == nil {
				t.Error("ParseClaims() expected error")
			}
		})
	}
}
