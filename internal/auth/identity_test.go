package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-please-rotate"

func mintToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestVerifyAcceptsValidHostToken(t *testing.T) {
	svc := NewIdentityService(testSecret)

	tokenString := mintToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u-123",
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	user, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.ID != "u-123" || user.DisplayName != "Ada Lovelace" || user.Email != "ada@example.com" {
		t.Fatalf("Verify() = %+v, want u-123 / Ada Lovelace / ada@example.com", user)
	}
}

func TestVerifyFallsBackToEmailForMissingName(t *testing.T) {
	svc := NewIdentityService(testSecret)

	tokenString := mintToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u-123",
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	user, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.DisplayName != "ada@example.com" {
		t.Fatalf("DisplayName = %q, want email fallback", user.DisplayName)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc := NewIdentityService(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{
			"wrong secret",
			mintToken(t, "some-other-secret", jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "u-123", "email": "ada@example.com",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			"expired",
			mintToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "u-123", "email": "ada@example.com",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			"missing subject",
			mintToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"email": "ada@example.com",
				"exp":   time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			"missing email",
			mintToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "u-123",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
