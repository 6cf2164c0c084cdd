package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmedsamir-dev/netcafes/app/controllers"
	"github.com/ahmedsamir-dev/netcafes/app/repository"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/accounts"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/database"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/mail"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/middleware"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/oauth"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// init repositories and the account service shared by all controllers
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()
	svc := accounts.NewService(repos, mail.NewSMTPMailer(), accounts.ConfigFromEnv())
	controllers.InitializeAuthController(svc)

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app, repos)
	h.registerAdminRoutes(app, repos, svc)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
