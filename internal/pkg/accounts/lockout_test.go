package accounts

import (
	"testing"
	"time"

	"github.com/ahmedsamir-dev/netcafes/app/models"
)

func TestLockoutPolicyShouldLock(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 2 * time.Minute}

	tests := []struct {
		count int
		want  bool
	}{
		{count: 0, want: false},
		{count: 4, want: false},
		{count: 5, want: true},
		{count: 6, want: true},
	}

	for _, tt := range tests {
		if got := policy.ShouldLock(tt.count); got != tt.want {
			t.Fatalf("ShouldLock(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestLockoutPolicyLockoutEnd(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 2 * time.Minute}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := policy.LockoutEnd(now); !got.Equal(now.Add(2 * time.Minute)) {
		t.Fatalf("LockoutEnd = %v, want %v", got, now.Add(2*time.Minute))
	}
}

func TestLockoutPolicyIsLockedOut(t *testing.T) {
	policy := LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 2 * time.Minute}
	now := time.Now()
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	if policy.IsLockedOut(&models.User{}, now) {
		t.Fatal("user without LockedUntil must not be locked")
	}
	if !policy.IsLockedOut(&models.User{LockedUntil: &future}, now) {
		t.Fatal("user locked until the future must be locked")
	}
	if policy.IsLockedOut(&models.User{LockedUntil: &past}, now) {
		t.Fatal("an elapsed lock must not count as locked")
	}
}

func TestAdminLockEnd(t *testing.T) {
	if got := AdminLockEnd(nil); !got.Equal(models.LockoutForever) {
		t.Fatalf("AdminLockEnd(nil) = %v, want the indefinite sentinel", got)
	}

	until := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if got := AdminLockEnd(&until); !got.Equal(until) {
		t.Fatalf("AdminLockEnd = %v, want %v", got, until)
	}
}
