package accounts

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"github.com/ahmedsamir-dev/netcafes/app/repository"
)

// TokenIssuer creates and redeems single-use, purpose-scoped tokens. Only
// the SHA-256 hash of a value ever reaches the store.
type TokenIssuer struct {
	tokens repository.TokenRepository
}

// NewTokenIssuer creates a token issuer over the given repository.
func NewTokenIssuer(tokens repository.TokenRepository) *TokenIssuer {
	return &TokenIssuer{tokens: tokens}
}

// Issue generates a fresh token for the user and purpose and returns the raw
// value to embed in an email link.
func (i *TokenIssuer) Issue(userID uint, purpose string, ttl time.Duration) (string, error) {
	token, raw, err := models.NewAuthToken(userID, purpose, ttl)
	if err != nil {
		return "", err
	}
	if err := i.tokens.Create(token); err != nil {
		return "", err
	}
	return raw, nil
}

// Validate checks a raw value against the store without consuming it and
// returns the matching row. Failure reasons stay distinct inside the package.
func (i *TokenIssuer) Validate(raw, purpose string) (*models.AuthToken, error) {
	token, err := i.tokens.GetByHash(models.HashTokenValue(raw))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errTokenNotFound
		}
		return nil, err
	}
	if token.Purpose != purpose {
		return nil, errTokenWrongPurpose
	}
	if token.IsConsumed() {
		return nil, errTokenConsumed
	}
	if token.IsExpired(time.Now()) {
		return nil, errTokenExpired
	}
	return token, nil
}

// Consume validates and then redeems a token. The compare-and-swap in the
// repository guarantees exactly one winner under concurrent redemption.
func (i *TokenIssuer) Consume(raw, purpose string) (uint, error) {
	token, err := i.Validate(raw, purpose)
	if err != nil {
		return 0, err
	}
	ok, err := i.tokens.Consume(token.ID, time.Now())
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errTokenConsumed
	}
	return token.UserID, nil
}
