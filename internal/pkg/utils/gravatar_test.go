package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGravatarURL(t *testing.T) {
	url := GetGravatarURL("alice@example.com", 120)
	assert.Contains(t, url, "https://www.gravatar.com/avatar/")
	assert.Contains(t, url, "s=120")
	assert.Contains(t, url, "d=mp")

	// Case and whitespace do not change the hash.
	assert.Equal(t, GetGravatarURL("alice@example.com", 120), GetGravatarURL("  Alice@Example.COM ", 120))

	// Non-positive sizes fall back to the default.
	assert.Contains(t, GetGravatarURL("alice@example.com", 0), "s=80")
}
