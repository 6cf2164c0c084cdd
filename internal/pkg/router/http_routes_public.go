package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ahmedsamir-dev/netcafes/app/controllers"
	"github.com/ahmedsamir-dev/netcafes/app/repository"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/constants"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App, repos *repository.Repositories) {
	// Credential endpoints get an IP rate limit on top of the per-account
	// lockout policy.
	authLimiter := limiter.New(limiter.Config{Max: 20})

	app.Post(constants.RouteRegister, authLimiter, controllers.HandleRegister)
	app.Get(constants.RouteConfirmEmail, controllers.HandleConfirmEmail)
	app.Post(constants.RouteLogin, authLimiter, controllers.HandleLogin)
	app.Post(constants.RouteForgotPassword, authLimiter, controllers.HandleForgotPassword)
	app.Post(constants.RouteResetPassword, authLimiter, controllers.HandleResetPassword)

	app.Post(constants.RouteLogout, middleware.RequireAuth, controllers.HandleLogout)
	app.Post(constants.RouteChangePassword, middleware.RequireAuth, controllers.HandleChangePassword)

	// external OAuth
	app.Get(constants.RouteOAuthBegin, controllers.HandleOAuthBegin)
	app.Get(constants.RouteOAuthCallback, controllers.HandleOAuthCallback)

	// brand listings: read for any logged-in user, write admin-only
	brands := controllers.NewBrandController(repos)
	app.Get(constants.RouteBrands, middleware.RequireAuth, brands.HandleList)
	app.Get(constants.RouteBrandDetail, middleware.RequireAuth, brands.HandleDetail)
	app.Post(constants.RouteBrands, middleware.RequireAdmin, brands.HandleCreate)
	app.Put(constants.RouteBrandDetail, middleware.RequireAdmin, brands.HandleUpdate)
	app.Delete(constants.RouteBrandDetail, middleware.RequireAdmin, brands.HandleDelete)
}
