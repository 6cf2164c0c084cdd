package repository

import (
	"time"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByName(name string) (*models.User, error)
	GetByNameOrEmail(input string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)

	// Search returns a page of users matching name, email or phone plus the
	// total match count. Pagination happens in SQL, never in memory.
	Search(query string, offset, limit int) ([]models.User, int64, error)

	// RegisterFailedLogin atomically increments the failed-login counter and,
	// when the counter reaches maxAttempts, sets the lockout end. It returns
	// the new counter value. The whole step runs in one per-row transaction
	// so concurrent failures never under-count.
	RegisterFailedLogin(id uint, maxAttempts int, lockUntil time.Time) (int, error)

	// MarkLoginSuccess resets the failed-login counter and stamps the last
	// login time in a single update.
	MarkLoginSuccess(id uint, at time.Time) error

	// SetLockout sets the lockout end (nil clears the lock and resets the
	// failed-login counter).
	SetLockout(id uint, until *time.Time) error
}

// TokenRepository defines the interface for single-use auth token operations
type TokenRepository interface {
	Create(token *models.AuthToken) error
	GetByHash(hash string) (*models.AuthToken, error)

	// Consume marks the token consumed iff it has not been consumed yet.
	// Exactly one concurrent caller observes true.
	Consume(id uint, at time.Time) (bool, error)

	DeleteExpired(before time.Time) (int64, error)
}

// ProviderAccountRepository defines the interface for external identity links
type ProviderAccountRepository interface {
	Get(provider, providerUserID string) (*models.ProviderAccount, error)
	Create(pa *models.ProviderAccount) error
	Update(pa *models.ProviderAccount) error
	ListByUser(userID uint) ([]models.ProviderAccount, error)
}

// BrandRepository defines the interface for brand-related database operations
type BrandRepository interface {
	Create(brand *models.Brand) error
	GetByID(id uint) (*models.Brand, error)
	GetByUUID(uuid string) (*models.Brand, error)
	Update(brand *models.Brand) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Brand, error)
	Count() (int64, error)
	Search(query string, offset, limit int) ([]models.Brand, int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User     UserRepository
	Token    TokenRepository
	Provider ProviderAccountRepository
	Brand    BrandRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Token:    NewTokenRepository(db),
		Provider: NewProviderAccountRepository(db),
		Brand:    NewBrandRepository(db),
	}
}
