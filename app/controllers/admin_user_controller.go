package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"github.com/ahmedsamir-dev/netcafes/app/repository"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/accounts"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/utils"
)

// AdminUserController is the user back office: listing, search, manual
// account management and lockout administration.
type AdminUserController struct {
	repos *repository.Repositories
	svc   *accounts.Service
}

// NewAdminUserController creates the admin controller with its dependencies.
func NewAdminUserController(repos *repository.Repositories, svc *accounts.Service) *AdminUserController {
	return &AdminUserController{repos: repos, svc: svc}
}

type adminCreateUserRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

type adminUpdateUserRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Role           string `json:"role"`
	EmailConfirmed *bool  `json:"email_confirmed"`
}

type adminLockRequest struct {
	Until *time.Time `json:"until"`
}

type adminResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// adminUserView exposes the management fields of an account, including the
// lockout state the public API never reveals.
func adminUserView(u *models.User) fiber.Map {
	now := time.Now()
	return fiber.Map{
		"id":                 u.ID,
		"name":               u.Name,
		"email":              u.Email,
		"phone":              u.Phone,
		"role":               u.Role,
		"email_confirmed":    u.IsEmailConfirmed(),
		"is_locked_out":      u.IsLockedOut(now),
		"locked_until":       u.LockedUntil,
		"failed_login_count": u.FailedLoginCount,
		"last_login_at":      u.LastLoginAt,
		"login_count":        u.LoginCount,
		"avatar_url":         utils.GetGravatarURL(u.Email, 80),
		"created_at":         u.CreatedAt,
	}
}

// HandleUsers returns a page of users, optionally filtered by a search term
// matching name, email or phone.
func (ac *AdminUserController) HandleUsers(c *fiber.Ctx) error {
	page, pageSize, offset := parsePagination(c)
	query := c.Query("q", "")

	var (
		users []models.User
		total int64
		err   error
	)
	if query != "" {
		users, total, err = ac.repos.User.Search(query, offset, pageSize)
	} else {
		if total, err = ac.repos.User.Count(); err == nil {
			users, err = ac.repos.User.List(offset, pageSize)
		}
	}
	if err != nil {
		return handleInternalError(c, "failed to list users", err)
	}

	views := make([]fiber.Map, len(users))
	for i := range users {
		views[i] = adminUserView(&users[i])
	}

	return c.JSON(fiber.Map{
		"users":       views,
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": totalPages(total, pageSize),
	})
}

// HandleUserDetail returns one account with its linked external identities.
func (ac *AdminUserController) HandleUserDetail(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	user, err := ac.repos.User.GetByID(id)
	if err != nil {
		if resp, ok := handleNotFound(c, err); ok {
			return resp
		}
		return handleInternalError(c, "failed to load user", err)
	}

	providers, err := ac.repos.Provider.ListByUser(user.ID)
	if err != nil {
		return handleInternalError(c, "failed to load provider accounts", err)
	}

	view := adminUserView(user)
	view["provider_accounts"] = providers
	return c.JSON(view)
}

// HandleUserCreate creates an account from the back office, with an explicit
// role and optional pre-confirmed email.
func (ac *AdminUserController) HandleUserCreate(c *fiber.Ctx) error {
	var req adminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := ac.svc.CreateUser(req.Username, req.Email, req.Phone, req.Password, req.Role, req.EmailConfirmed)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already taken"})
		case errors.Is(err, accounts.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		case errors.Is(err, accounts.ErrInvalidRole):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "role must be user or admin"})
		}
		if resp, ok := handleValidationError(c, err); ok {
			return resp
		}
		return handleInternalError(c, "failed to create user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(adminUserView(user))
}

// HandleUserUpdate edits account fields and role from the back office.
func (ac *AdminUserController) HandleUserUpdate(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	user, err := ac.repos.User.GetByID(id)
	if err != nil {
		if resp, ok := handleNotFound(c, err); ok {
			return resp
		}
		return handleInternalError(c, "failed to load user", err)
	}

	var req adminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Role != "" && !models.IsValidRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "role must be user or admin"})
	}

	if req.Username != "" && req.Username != user.Name {
		if other, err := ac.repos.User.GetByName(req.Username); err == nil && other.ID != user.ID {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already taken"})
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return handleInternalError(c, "failed to check username", err)
		}
		user.Name = req.Username
	}
	if req.Email != "" && models.NormalizeEmail(req.Email) != user.Email {
		if other, err := ac.repos.User.GetByEmail(req.Email); err == nil && other.ID != user.ID {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return handleInternalError(c, "failed to check email", err)
		}
		user.Email = models.NormalizeEmail(req.Email)
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.EmailConfirmed != nil {
		if *req.EmailConfirmed && !user.IsEmailConfirmed() {
			user.ConfirmEmail()
		} else if !*req.EmailConfirmed {
			user.EmailConfirmedAt = nil
		}
	}

	if err := user.Validate(); err != nil {
		if resp, ok := handleValidationError(c, err); ok {
			return resp
		}
		return handleInternalError(c, "user validation failed", err)
	}

	if err := ac.repos.User.Update(user); err != nil {
		return handleInternalError(c, "failed to update user", err)
	}

	return c.JSON(adminUserView(user))
}

// HandleUserDelete soft deletes an account. Deleted accounts disappear from
// all lookups and can no longer log in.
func (ac *AdminUserController) HandleUserDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	if _, err := ac.repos.User.GetByID(id); err != nil {
		if resp, ok := handleNotFound(c, err); ok {
			return resp
		}
		return handleInternalError(c, "failed to load user", err)
	}

	if err := ac.repos.User.Delete(id); err != nil {
		return handleInternalError(c, "failed to delete user", err)
	}

	return c.JSON(fiber.Map{"message": "user deleted"})
}

// HandleUserLock applies an administrative lock; without a body timestamp
// the lock is indefinite.
func (ac *AdminUserController) HandleUserLock(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var req adminLockRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	if err := ac.svc.LockAccount(id, req.Until); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		return handleInternalError(c, "failed to lock user", err)
	}

	return c.JSON(fiber.Map{"message": "user locked"})
}

// HandleUserUnlock clears the lockout and the failed-login counter.
func (ac *AdminUserController) HandleUserUnlock(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	if err := ac.svc.UnlockAccount(id); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		return handleInternalError(c, "failed to unlock user", err)
	}

	return c.JSON(fiber.Map{"message": "user unlocked"})
}

// HandleUserResetPassword sets a new password for the account directly.
func (ac *AdminUserController) HandleUserResetPassword(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var req adminResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := ac.svc.AdminSetPassword(id, req.NewPassword); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": fmt.Sprintf("%v", err)})
	}

	return c.JSON(fiber.Map{"message": "password reset"})
}

// HandleResendActivation sends a fresh confirmation mail to an unconfirmed
// account.
func (ac *AdminUserController) HandleResendActivation(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	if err := ac.svc.ResendActivation(id); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		return handleInternalError(c, "failed to resend activation", err)
	}

	return c.JSON(fiber.Map{"message": "activation mail sent"})
}
