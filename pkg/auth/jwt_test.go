package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishivikram/vastra/config"
	"github.com/rishivikram/vastra/pkg/auth"
)

func TestValidateTokenRoundTrip(t *testing.T) {
	token, err := auth.SignToken("65a1b2c3", "admin", time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "65a1b2c3", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := auth.SignToken("65a1b2c3", "user", -time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

// Only HS256 is accepted; a token declaring another HMAC variant must be
// rejected even when it verifies against the same secret.
func TestValidateTokenPinsSigningMethod(t *testing.T) {
	claims := auth.Claims{
		UserID: "65a1b2c3",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).
		SignedString([]byte(config.JWTSecret()))
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}
