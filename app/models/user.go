package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// ErrPasswordTooShort is returned when a plaintext password misses the
// minimum length.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// LockoutForever is the sentinel used for indefinite administrative locks.
// It is far enough in the future to never expire on its own while staying
// distinguishable from "not locked" (LockedUntil == nil).
var LockoutForever = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"uniqueIndex;type:varchar(150) CHARACTER SET utf8 COLLATE utf8_bin" json:"name" validate:"required,min=3,max=150"`
	Email            string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Phone            string         `gorm:"type:varchar(30);default:null" json:"phone" validate:"max=30"`
	Password         string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role             string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	EmailConfirmedAt *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	FailedLoginCount int            `gorm:"default:0" json:"-"`
	// DATETIME, not TIMESTAMP: the column must hold LockoutForever, which is
	// far past the 2038 TIMESTAMP range end.
	LockedUntil *time.Time     `gorm:"type:datetime;default:null" json:"-"`
	LastLoginAt *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	LoginCount  int            `gorm:"default:0" json:"login_count"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// NewUser builds an unconfirmed user with a hashed password. Emails are
// stored lowercased; usernames keep their case and match exactly.
// The length check runs on the plaintext; the struct tag only ever sees the
// hash.
func NewUser(username string, email string, phone string, password string) (*User, error) {
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}

	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     strings.TrimSpace(username),
		Email:    NormalizeEmail(email),
		Phone:    strings.TrimSpace(phone),
		Password: pw,
		Role:     ROLE_USER,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidRole reports whether the role belongs to the closed role set.
func IsValidRole(role string) bool {
	return role == ROLE_USER || role == ROLE_ADMIN
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// IsEmailConfirmed reports whether the account completed email confirmation.
func (u *User) IsEmailConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

// ConfirmEmail marks the account's email as confirmed.
func (u *User) ConfirmEmail() {
	now := time.Now()
	u.EmailConfirmedAt = &now
}

// IsLockedOut reports whether the account is locked at the given instant.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// LockoutRemaining returns how long the lockout still lasts at the given
// instant, or zero when the account is not locked.
func (u *User) LockoutRemaining(now time.Time) time.Duration {
	if !u.IsLockedOut(now) {
		return 0
	}
	return u.LockedUntil.Sub(now)
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}
