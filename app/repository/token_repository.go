package repository

import (
	"time"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"gorm.io/gorm"
)

// tokenRepository implements the TokenRepository interface
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new auth token repository instance
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Create stores a new token row
func (r *tokenRepository) Create(token *models.AuthToken) error {
	return r.db.Create(token).Error
}

// GetByHash retrieves a token row by its stored value hash
func (r *tokenRepository) GetByHash(hash string) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Consume marks the token consumed with a compare-and-swap update. The
// consumed_at IS NULL guard makes exactly one concurrent caller win.
func (r *tokenRepository) Consume(id uint, at time.Time) (bool, error) {
	res := r.db.Model(&models.AuthToken{}).
		Where("id = ? AND consumed_at IS NULL", id).
		UpdateColumn("consumed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteExpired removes token rows whose expiry is before the given instant.
func (r *tokenRepository) DeleteExpired(before time.Time) (int64, error) {
	res := r.db.Where("expires_at < ?", before).Delete(&models.AuthToken{})
	return res.RowsAffected, res.Error
}
