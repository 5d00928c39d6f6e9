package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"pagechat/internal/models"
)

var ErrInvalidToken = errors.New("invalid identity token")

// IdentityService verifies bearer tokens minted by the hosting portal
// and maps them to the chat identity. The host signs HS256 tokens
// carrying the user's id, display name and email; this service never
// issues tokens of its own.
type IdentityService struct {
	secret []byte
}

type identityClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewIdentityService(secret string) *IdentityService {
	return &IdentityService{secret: []byte(secret)}
}

// Verify parses and validates a host token and returns the user it
// identifies.
func (s *IdentityService) Verify(tokenString string) (*models.UserMention, error) {
	token, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.Email) == "" {
		return nil, fmt.Errorf("%w: missing subject or email claim", ErrInvalidToken)
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = claims.Email
	}

	return &models.UserMention{
		ID:          claims.Subject,
		DisplayName: name,
		Email:       claims.Email,
	}, nil
}
