package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/tradedesk/internal/models"
)

func TestService_TokenRoundTrip(t *testing.T) {
	s := NewService("test-secret")
	identity := &models.Identity{ID: "id-1", Address: "0xABC"}

	token, err := s.IssueToken(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identityID, err := s.IdentityFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "id-1", identityID)
}

func TestService_RejectsWrongSecret(t *testing.T) {
	token, err := NewService("secret-a").IssueToken(&models.Identity{ID: "id-1", Address: "0xABC"})
	require.NoError(t, err)

	_, err = NewService("secret-b").IdentityFromToken(token)
	assert.Error(t, err)
}

func TestService_RejectsGarbage(t *testing.T) {
	s := NewService("test-secret")

	_, err := s.IdentityFromToken("not-a-token")
	assert.Error(t, err)
}

func TestService_RejectsExpiredToken(t *testing.T) {
	s := NewService("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"identity_id": "id-1",
		"exp":         time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.IdentityFromToken(tokenString)
	assert.Error(t, err)
}

func TestService_RejectsMissingIdentityClaim(t *testing.T) {
	s := NewService("test-secret")

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := anonymous.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.IdentityFromToken(tokenString)
	assert.Error(t, err)
}
