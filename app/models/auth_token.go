package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	TOKEN_PURPOSE_EMAIL_CONFIRMATION = "email_confirmation"
	TOKEN_PURPOSE_PASSWORD_RESET     = "password_reset"
)

// AuthToken is a single-use, purpose-scoped, time-limited token row.
// Only the SHA-256 hash of the raw value is stored; the raw value is handed
// to the user once (via email link) and never persisted.
type AuthToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index" json:"user_id"`
	Purpose    string     `gorm:"type:varchar(50);index" json:"purpose"`
	TokenHash  string     `gorm:"uniqueIndex;type:varchar(64)" json:"-"`
	ExpiresAt  time.Time  `gorm:"type:timestamp" json:"expires_at"`
	ConsumedAt *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// GenerateTokenValue creates a cryptographically random opaque token value.
func GenerateTokenValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashTokenValue returns the SHA-256 hex digest stored for a raw token value.
func HashTokenValue(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// NewAuthToken builds a token row for the given user and purpose and returns
// the row together with the raw value to embed in the outgoing email.
func NewAuthToken(userID uint, purpose string, ttl time.Duration) (*AuthToken, string, error) {
	raw, err := GenerateTokenValue()
	if err != nil {
		return nil, "", err
	}
	t := &AuthToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: HashTokenValue(raw),
		ExpiresAt: time.Now().Add(ttl),
	}
	return t, raw, nil
}

// IsExpired reports whether the token is past its expiry at the given instant.
func (t *AuthToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsConsumed reports whether the token was already used.
func (t *AuthToken) IsConsumed() bool {
	return t.ConsumedAt != nil
}
