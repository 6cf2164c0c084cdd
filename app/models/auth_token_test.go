package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenValue(t *testing.T) {
	a, err := GenerateTokenValue()
	require.NoError(t, err)
	b, err := GenerateTokenValue()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestHashTokenValue(t *testing.T) {
	hash := HashTokenValue("some-token")

	assert.Len(t, hash, 64)
	assert.NotEqual(t, "some-token", hash)
	assert.Equal(t, hash, HashTokenValue("some-token"))
	assert.Equal(t, hash, HashTokenValue("  some-token  "), "surrounding whitespace from mangled links is tolerated")
	assert.NotEqual(t, hash, HashTokenValue("other-token"))
}

func TestNewAuthToken(t *testing.T) {
	token, raw, err := NewAuthToken(7, TOKEN_PURPOSE_PASSWORD_RESET, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, uint(7), token.UserID)
	assert.Equal(t, TOKEN_PURPOSE_PASSWORD_RESET, token.Purpose)
	assert.Equal(t, HashTokenValue(raw), token.TokenHash)
	assert.NotContains(t, token.TokenHash, raw)
	assert.Nil(t, token.ConsumedAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Second)
}

func TestAuthTokenIsExpired(t *testing.T) {
	now := time.Now()
	token := &AuthToken{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, token.IsExpired(now))
	assert.True(t, token.IsExpired(now.Add(2*time.Minute)))
}

func TestAuthTokenIsConsumed(t *testing.T) {
	token := &AuthToken{}
	assert.False(t, token.IsConsumed())

	now := time.Now()
	token.ConsumedAt = &now
	assert.True(t, token.IsConsumed())
}
