package accounts

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedsamir-dev/netcafes/app/models"
)

func TestTokenIssuerIssueAndConsume(t *testing.T) {
	repo := newFakeTokenRepo()
	issuer := NewTokenIssuer(repo)

	raw, err := issuer.Issue(42, models.TOKEN_PURPOSE_EMAIL_CONFIRMATION, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// Only the hash ever reaches the store.
	_, err = repo.GetByHash(raw)
	assert.Error(t, err)
	stored, err := repo.GetByHash(models.HashTokenValue(raw))
	require.NoError(t, err)
	assert.Equal(t, uint(42), stored.UserID)

	token, err := issuer.Validate(raw, models.TOKEN_PURPOSE_EMAIL_CONFIRMATION)
	require.NoError(t, err)
	assert.Equal(t, uint(42), token.UserID)

	userID, err := issuer.Consume(raw, models.TOKEN_PURPOSE_EMAIL_CONFIRMATION)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenIssuerConsumeIsSingleUse(t *testing.T) {
	repo := newFakeTokenRepo()
	issuer := NewTokenIssuer(repo)

	raw, err := issuer.Issue(1, models.TOKEN_PURPOSE_PASSWORD_RESET, time.Hour)
	require.NoError(t, err)

	_, err = issuer.Consume(raw, models.TOKEN_PURPOSE_PASSWORD_RESET)
	require.NoError(t, err)

	_, err = issuer.Consume(raw, models.TOKEN_PURPOSE_PASSWORD_RESET)
	assert.ErrorIs(t, err, errTokenConsumed)

	_, err = issuer.Validate(raw, models.TOKEN_PURPOSE_PASSWORD_RESET)
	assert.ErrorIs(t, err, errTokenConsumed)
}

func TestTokenIssuerConcurrentConsumeSingleWinner(t *testing.T) {
	repo := newFakeTokenRepo()
	issuer := NewTokenIssuer(repo)

	raw, err := issuer.Issue(7, models.TOKEN_PURPOSE_PASSWORD_RESET, time.Hour)
	require.NoError(t, err)

	const racers = 16
	var wg sync.WaitGroup
	var wins int32
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			if _, err := issuer.Consume(raw, models.TOKEN_PURPOSE_PASSWORD_RESET); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins, "exactly one concurrent redemption may win")
}

func TestTokenIssuerPurposeMismatch(t *testing.T) {
	repo := newFakeTokenRepo()
	issuer := NewTokenIssuer(repo)

	raw, err := issuer.Issue(1, models.TOKEN_PURPOSE_EMAIL_CONFIRMATION, time.Hour)
	require.NoError(t, err)

	_, err = issuer.Validate(raw, models.TOKEN_PURPOSE_PASSWORD_RESET)
	assert.ErrorIs(t, err, errTokenWrongPurpose)

	// The mismatch does not consume the token.
	_, err = issuer.Consume(raw, models.TOKEN_PURPOSE_EMAIL_CONFIRMATION)
	require.NoError(t, err)
}

func TestTokenIssuerUnknownValue(t *testing.T) {
	issuer := NewTokenIssuer(newFakeTokenRepo())

	_, err := issuer.Validate("no-such-token", models.TOKEN_PURPOSE_EMAIL_CONFIRMATION)
	assert.ErrorIs(t, err, errTokenNotFound)
}

func TestTokenIssuerExpiry(t *testing.T) {
	repo := newFakeTokenRepo()
	issuer := NewTokenIssuer(repo)

	raw, err := issuer.Issue(1, models.TOKEN_PURPOSE_PASSWORD_RESET, time.Hour)
	require.NoError(t, err)
	repo.expire(raw)

	_, err = issuer.Validate(raw, models.TOKEN_PURPOSE_PASSWORD_RESET)
	assert.ErrorIs(t, err, errTokenExpired)

	_, err = issuer.Consume(raw, models.TOKEN_PURPOSE_PASSWORD_RESET)
	assert.ErrorIs(t, err, errTokenExpired)
}
