package main

import (
	"fmt"
	"log"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ahmedsamir-dev/netcafes/internal/pkg/cache"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/database"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/env"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/maintenance"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	app := fiber.New(fiber.Config{
		AppName: "NetCafes",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	// BACKGROUND TASKS
	maintenance.GetManager().Start()
	app.Hooks().OnShutdown(func() error {
		maintenance.GetManager().Stop()
		return nil
	})

	return app
}
