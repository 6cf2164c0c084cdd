package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmedsamir-dev/netcafes/app/repository"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/session"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/usercontext"
)

func anonymous(c *fiber.Ctx) error {
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
	return c.Next()
}

// UserContextMiddleware resolves the session into a request-scoped user
// context. The session only carries the user id; role and username are
// re-read from the store so deletions and role changes apply immediately.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth uses its own fiber session store on OAuth routes; skip the app
	// session there to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return anonymous(c)
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		return anonymous(c)
	}

	uid, ok := userID.(uint)
	if !ok {
		return anonymous(c)
	}

	// Soft-deleted users are excluded by the repository lookup, so a deleted
	// account degrades to anonymous on its next request.
	user, err := repository.GetGlobalRepositories().User.GetByID(uid)
	if err != nil {
		return anonymous(c)
	}

	userCtx := usercontext.UserContext{
		UserID:     user.ID,
		Username:   user.Name,
		IsLoggedIn: true,
		IsAdmin:    user.IsAdmin(),
	}
	c.Locals("USER_CONTEXT", userCtx)

	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUsername, user.Name)
	c.Locals(usercontext.KeyUserID, user.ID)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}
