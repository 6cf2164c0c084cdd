package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ahmedsamir-dev/netcafes/internal/pkg/accounts"
)

// HandleOAuthBegin starts the provider handshake.
func HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in.
// The provider supplies (provider, user id, email, name); the account
// service decides whether that maps to an existing link, an existing account
// by email, or a brand-new auto-confirmed account.
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("OAuth failed: %v", err),
		})
	}

	var exp *time.Time
	if !u.ExpiresAt.IsZero() {
		t := u.ExpiresAt
		exp = &t
	}

	user, err := accountService.LinkExternalLogin(accounts.ExternalIdentity{
		Provider:       u.Provider,
		ProviderUserID: u.UserID,
		Email:          u.Email,
		Name:           firstNonEmpty(u.Name, u.NickName, u.Email),
		AccessToken:    u.AccessToken,
		RefreshToken:   u.RefreshToken,
		ExpiresAt:      exp,
	})
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrEmailRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "external provider did not supply an email address",
			})
		case errors.Is(err, accounts.ErrLockedOut):
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{
				"error": "account temporarily locked",
			})
		case errors.Is(err, accounts.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "linked account no longer exists",
			})
		}
		return handleInternalError(c, "external login failed", err)
	}

	if err := establishSession(c, user); err != nil {
		return handleInternalError(c, "session setup failed", err)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
