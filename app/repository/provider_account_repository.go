package repository

import (
	"github.com/ahmedsamir-dev/netcafes/app/models"
	"gorm.io/gorm"
)

// providerAccountRepository implements the ProviderAccountRepository interface
type providerAccountRepository struct {
	db *gorm.DB
}

// NewProviderAccountRepository creates a new provider account repository instance
func NewProviderAccountRepository(db *gorm.DB) ProviderAccountRepository {
	return &providerAccountRepository{db: db}
}

// Get retrieves the link for a (provider, provider user id) pair
func (r *providerAccountRepository) Get(provider, providerUserID string) (*models.ProviderAccount, error) {
	var pa models.ProviderAccount
	err := r.db.Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&pa).Error
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

// Create stores a new provider identity link
func (r *providerAccountRepository) Create(pa *models.ProviderAccount) error {
	return r.db.Create(pa).Error
}

// Update saves refreshed provider tokens
func (r *providerAccountRepository) Update(pa *models.ProviderAccount) error {
	return r.db.Save(pa).Error
}

// ListByUser returns all provider links of a user
func (r *providerAccountRepository) ListByUser(userID uint) ([]models.ProviderAccount, error) {
	var pas []models.ProviderAccount
	err := r.db.Where("user_id = ?", userID).Find(&pas).Error
	return pas, err
}
