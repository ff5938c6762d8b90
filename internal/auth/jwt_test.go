package auth

import (
	"testing"
	"time"

	"marketplace-order-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerify(t *testing.T) {
	v := NewVerifier(testSecret)

	t.Run("valid user token", func(t *testing.T) {
		token := signToken(t, testSecret, Claims{
			UID:  42,
			Role: models.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "alice@example.com",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		p, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), p.UserID)
		assert.Equal(t, models.RoleUser, p.Role)
		assert.False(t, p.IsAdmin())
	})

	t.Run("admin role is preserved", func(t *testing.T) {
		token := signToken(t, testSecret, Claims{UID: 9, Role: models.RoleAdmin})

		p, err := v.Verify(token)
		require.NoError(t, err)
		assert.True(t, p.IsAdmin())
	})

	t.Run("unknown roles collapse to user", func(t *testing.T) {
		token := signToken(t, testSecret, Claims{UID: 7, Role: "superuser"})

		p, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, p.Role)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", Claims{UID: 42, Role: models.RoleUser})

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		token := signToken(t, testSecret, Claims{
			UID:  42,
			Role: models.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects missing uid", func(t *testing.T) {
		token := signToken(t, testSecret, Claims{Role: models.RoleUser})

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
