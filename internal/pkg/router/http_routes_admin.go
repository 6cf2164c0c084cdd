package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmedsamir-dev/netcafes/app/controllers"
	"github.com/ahmedsamir-dev/netcafes/app/repository"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/accounts"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App, repos *repository.Repositories, svc *accounts.Service) {
	admin := app.Group("/admin", middleware.RequireAdmin)

	users := controllers.NewAdminUserController(repos, svc)
	admin.Get("/users", users.HandleUsers)
	admin.Post("/users", users.HandleUserCreate)
	admin.Get("/users/:id", users.HandleUserDetail)
	admin.Put("/users/:id", users.HandleUserUpdate)
	admin.Delete("/users/:id", users.HandleUserDelete)
	admin.Post("/users/:id/lock", users.HandleUserLock)
	admin.Post("/users/:id/unlock", users.HandleUserUnlock)
	admin.Post("/users/:id/reset-password", users.HandleUserResetPassword)
	admin.Post("/users/:id/resend-activation", users.HandleResendActivation)
}
