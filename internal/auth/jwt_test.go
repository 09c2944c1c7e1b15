package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := m.Generate(42)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := m.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, "42", claims.Subject)
	})

	t.Run("garbage token", func(t *testing.T) {
		claims, err := m.Validate("not.a.token")

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("wrong secret", func(t *testing.T) {
		forged, err := NewTokenManager("other-secret", time.Hour).Generate(42)
		require.NoError(t, err)

		claims, err := m.Validate(forged)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := NewTokenManager("test-secret", -time.Minute).Generate(42)
		require.NoError(t, err)

		claims, err := m.Validate(expired)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})
}
