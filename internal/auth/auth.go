package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tradedesk/tradedesk/internal/models"
)

// Service issues and verifies session tokens for wallet logins. The
// token only identifies the session; it proves nothing about wallet
// ownership.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates an auth service signing with the given secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), ttl: 24 * time.Hour}
}

// IssueToken generates a signed session token for identity.
func (s *Service) IssueToken(identity *models.Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"identity_id": identity.ID,
		"address":     identity.Address,
		"exp":         time.Now().Add(s.ttl).Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// IdentityFromToken extracts the identity id from a session token.
func (s *Service) IdentityFromToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	identityID, ok := claims["identity_id"].(string)
	if !ok || identityID == "" {
		return "", fmt.Errorf("token missing identity_id claim")
	}
	return identityID, nil
}
