package controllers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/accounts"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/metrics/counter"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/session"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/usercontext"
)

var accountService *accounts.Service

// InitializeAuthController wires the shared account service into the auth
// and oauth handlers.
func InitializeAuthController(svc *accounts.Service) {
	accountService = svc
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	UserID      uint   `json:"user_id"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// HandleRegister creates a new unconfirmed account.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := accountService.Register(req.Username, req.Email, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already taken"})
		case errors.Is(err, accounts.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		case errors.Is(err, models.ErrPasswordTooShort):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		if resp, ok := handleValidationError(c, err); ok {
			return resp
		}
		return handleInternalError(c, "registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      user.ID,
		"message": "registered, please confirm your email",
	})
}

// HandleConfirmEmail redeems the confirmation link from the registration mail.
func HandleConfirmEmail(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	token := c.Query("token")
	if err != nil || token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid confirmation link"})
	}

	if err := accountService.ConfirmEmail(uint(userID), token); err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidToken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid or expired token"})
		case errors.Is(err, accounts.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		return handleInternalError(c, "email confirmation failed", err)
	}

	return c.JSON(fiber.Map{"message": "email confirmed"})
}

// HandleLogin verifies credentials and establishes a session. All credential
// failures share one response so callers cannot probe for account existence.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := accountService.Login(req.UsernameOrEmail, req.Password)
	if err != nil {
		return handleInternalError(c, "login failed", err)
	}

	switch result.Status {
	case accounts.LoginSuccess:
		if err := establishSession(c, result.User); err != nil {
			return handleInternalError(c, "session setup failed", err)
		}
		return c.JSON(fiber.Map{
			"message": "logged in",
			"user": fiber.Map{
				"id":   result.User.ID,
				"name": result.User.Name,
				"role": result.User.Role,
			},
		})
	case accounts.LoginNotAllowed:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "email must be confirmed before login",
		})
	case accounts.LoginLockedOut:
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"error":       "account temporarily locked after repeated failed logins",
			"retry_after": int(result.LockoutRemaining.Seconds()),
		})
	default:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid username or password",
		})
	}
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			return handleInternalError(c, "logout failed", err)
		}
	}
	c.Locals(usercontext.KeyFromProtected, false)
	return c.JSON(fiber.Map{"message": "logged out"})
}

// HandleChangePassword replaces the password of the logged-in user.
func HandleChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	userID := usercontext.GetUserID(c)
	if err := accountService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, accounts.ErrWrongPassword):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "old password is incorrect"})
		case errors.Is(err, accounts.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": fmt.Sprintf("%v", err)})
	}

	return c.JSON(fiber.Map{"message": "password changed"})
}

// HandleForgotPassword always answers with the same body, whether or not the
// email belongs to an account.
func HandleForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	accountService.RequestPasswordReset(req.Email)

	return c.JSON(fiber.Map{
		"message": "if the email belongs to an account, a reset link has been sent",
	})
}

// HandleResetPassword redeems a reset token and sets the new password.
func HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := accountService.ResetPassword(req.UserID, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidToken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid or expired token"})
		case errors.Is(err, accounts.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": fmt.Sprintf("%v", err)})
	}

	return c.JSON(fiber.Map{"message": "password reset"})
}

// establishSession writes the minimal identity into a fresh session.
func establishSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())

	if err := sess.Save(); err != nil {
		return err
	}

	if err := counter.AddLogin(user.ID); err != nil {
		log.Printf("warning: could not record login for user %d: %v", user.ID, err)
	}
	return nil
}
