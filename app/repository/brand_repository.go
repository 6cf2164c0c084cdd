package repository

import (
	"strings"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"gorm.io/gorm"
)

// brandRepository implements the BrandRepository interface
type brandRepository struct {
	db *gorm.DB
}

// NewBrandRepository creates a new brand repository instance
func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

// Create creates a new brand in the database
func (r *brandRepository) Create(brand *models.Brand) error {
	return r.db.Create(brand).Error
}

// GetByID retrieves a brand by its ID
func (r *brandRepository) GetByID(id uint) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.First(&brand, id).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// GetByUUID retrieves a brand by its public identifier
func (r *brandRepository) GetByUUID(uuid string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.Where("uuid = ?", uuid).First(&brand).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// Update updates an existing brand in the database
func (r *brandRepository) Update(brand *models.Brand) error {
	return r.db.Save(brand).Error
}

// Delete soft deletes a brand by its ID
func (r *brandRepository) Delete(id uint) error {
	return r.db.Delete(&models.Brand{}, id).Error
}

// List retrieves a paginated list of brands, newest first
func (r *brandRepository) List(offset, limit int) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&brands).Error
	return brands, err
}

// Count returns the total number of non-deleted brands
func (r *brandRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Brand{}).Count(&count).Error
	return count, err
}

// Search returns a page of brands matching name or description plus the
// total match count.
func (r *brandRepository) Search(query string, offset, limit int) ([]models.Brand, int64, error) {
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	base := r.db.Model(&models.Brand{}).
		Where("name LIKE ? OR description LIKE ?", searchPattern, searchPattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var brands []models.Brand
	err := base.Order("created_at DESC").Offset(offset).Limit(limit).Find(&brands).Error
	return brands, total, err
}
