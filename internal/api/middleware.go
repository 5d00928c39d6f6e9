package api

import (
	"context"
	"net/http"
	"strings"

	"pagechat/internal/auth"
	"pagechat/internal/models"
)

type contextKey string

const userKey contextKey = "user"

type AuthMiddleware struct {
	identity *auth.IdentityService
}

func NewAuthMiddleware(identity *auth.IdentityService) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

// RequireAuth resolves the host-issued bearer token into the chat
// identity and stores it on the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			unauthorized(w, "Invalid authorization header format")
			return
		}

		user, err := m.identity.Verify(parts[1])
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUser(r *http.Request) *models.UserMention {
	if v := r.Context().Value(userKey); v != nil {
		if user, ok := v.(*models.UserMention); ok {
			return user
		}
	}
	return nil
}
