package accounts

import (
	"time"

	"github.com/ahmedsamir-dev/netcafes/app/models"
)

// LockoutPolicy decides when repeated login failures lock an account.
// Lockout is calendar-time based: a stale failed count never expires on its
// own, only a successful login or an explicit unlock resets it.
type LockoutPolicy struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// ShouldLock reports whether the given failed-attempt count triggers a lock.
func (p LockoutPolicy) ShouldLock(failedCount int) bool {
	return failedCount >= p.MaxFailedAttempts
}

// LockoutEnd computes the end of a lockout window starting now.
func (p LockoutPolicy) LockoutEnd(now time.Time) time.Time {
	return now.Add(p.LockoutDuration)
}

// IsLockedOut reports whether the account is locked at the given instant.
func (p LockoutPolicy) IsLockedOut(u *models.User, now time.Time) bool {
	return u.IsLockedOut(now)
}

// AdminLockEnd resolves an administrative lock request: a nil until means
// an indefinite lock, represented by the far-future sentinel so it stays
// distinguishable from "not locked".
func AdminLockEnd(until *time.Time) time.Time {
	if until == nil {
		return models.LockoutForever
	}
	return *until
}
