package accounts

import (
	"errors"
	"strconv"
	"time"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/env"
)

// Service-level failures. Token failures are deliberately collapsed into
// ErrInvalidToken so callers cannot distinguish expired from consumed from
// unknown values.
var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already registered")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrWrongPassword   = errors.New("wrong password")
	ErrEmailRequired   = errors.New("external provider did not supply an email")
	ErrLockedOut       = errors.New("account is locked out")
	ErrInvalidRole     = errors.New("invalid role")
)

// Internal token failure reasons. The token issuer distinguishes them; the
// service maps all of them to ErrInvalidToken before they leave the package.
var (
	errTokenNotFound     = errors.New("token not found")
	errTokenExpired      = errors.New("token expired")
	errTokenWrongPurpose = errors.New("token purpose mismatch")
	errTokenConsumed     = errors.New("token already consumed")
)

// LoginStatus is the closed set of login outcomes.
type LoginStatus int

const (
	LoginSuccess LoginStatus = iota
	LoginInvalidCredentials
	LoginNotAllowed // email not confirmed yet
	LoginLockedOut
)

// LoginResult carries the outcome of a login attempt. User is set only on
// success; LockoutRemaining only on LoginLockedOut.
type LoginResult struct {
	Status           LoginStatus
	User             *models.User
	LockoutRemaining time.Duration
}

// Config holds the account service policy knobs.
type Config struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	ConfirmTokenTTL   time.Duration
	ResetTokenTTL     time.Duration
	BaseURL           string
}

// ConfigFromEnv reads the policy configuration from the environment.
func ConfigFromEnv() Config {
	return Config{
		MaxFailedAttempts: envInt("LOCKOUT_MAX_FAILED", 5),
		LockoutDuration:   time.Duration(envInt("LOCKOUT_DURATION_MINUTES", 2)) * time.Minute,
		ConfirmTokenTTL:   time.Duration(envInt("CONFIRM_TOKEN_TTL_HOURS", 24)) * time.Hour,
		ResetTokenTTL:     time.Duration(envInt("RESET_TOKEN_TTL_HOURS", 24)) * time.Hour,
		BaseURL:           env.GetEnv("PUBLIC_DOMAIN", "http://localhost:"+env.GetEnv("APP_PORT", "4000")),
	}
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(env.GetEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return def
}
