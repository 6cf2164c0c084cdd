package repository

import (
	"strings"
	"time"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their normalized email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByName retrieves a user by their exact username
func (r *userRepository) GetByName(name string) (*models.User, error) {
	var user models.User
	err := r.db.Where("name = ?", strings.TrimSpace(name)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByNameOrEmail retrieves a user by exact username or normalized email
func (r *userRepository) GetByNameOrEmail(input string) (*models.User, error) {
	var user models.User
	err := r.db.Where("name = ? OR email = ?", strings.TrimSpace(input), models.NormalizeEmail(input)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Search returns a page of users matching name, email or phone plus the
// total match count.
func (r *userRepository) Search(query string, offset, limit int) ([]models.User, int64, error) {
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	base := r.db.Model(&models.User{}).
		Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", searchPattern, searchPattern, searchPattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := base.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

// RegisterFailedLogin increments the failed-login counter and applies the
// lockout once the threshold is reached, all inside one row transaction.
func (r *userRepository) RegisterFailedLogin(id uint, maxAttempts int, lockUntil time.Time) (int, error) {
	var failedCount int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", id).
			UpdateColumn("failed_login_count", gorm.Expr("failed_login_count + 1")).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		failedCount = user.FailedLoginCount

		if failedCount >= maxAttempts {
			if err := tx.Model(&models.User{}).Where("id = ?", id).
				UpdateColumn("locked_until", lockUntil).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return failedCount, err
}

// MarkLoginSuccess resets the failed-login counter and stamps last_login_at.
func (r *userRepository) MarkLoginSuccess(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"failed_login_count": 0,
			"last_login_at":      at,
		}).Error
}

// SetLockout sets or clears the lockout end; clearing also resets the counter.
func (r *userRepository) SetLockout(id uint, until *time.Time) error {
	updates := map[string]interface{}{"locked_until": until}
	if until == nil {
		updates["failed_login_count"] = 0
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumns(updates).Error
}
