package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/HAtt1la/gardenatlas/garden"
	"github.com/HAtt1la/gardenatlas/logger"
	"github.com/gofiber/fiber/v3"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New("gardenatlas")

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	setupShutdownListener(appCancel, log)

	gardenApp, err := NewApp(appCtx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	log.Info().
		Str("instance_id", uuid.New().String()).
		Str("db_path", gardenApp.config.DBPath).
		Str("http_addr", gardenApp.config.HTTPAddr).
		Str("environment", gardenApp.config.Environment).
		Msg("starting")

	app := fiber.New(fiber.Config{
		AppName: gardenApp.config.AppName,
	})

	mapRoutes(app, gardenApp)

	go func() {
		<-appCtx.Done()
		log.Info().Msg("shutting down HTTP server")
		app.Shutdown()
	}()

	if err := app.Listen(gardenApp.config.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupShutdownListener(appCancel context.CancelFunc, log zerolog.Logger) {
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info().Msg("shutdown signal received")
		appCancel()
	}()
}

func mapRoutes(app *fiber.App, gardenApp *App) {
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.New().String() },
	}))
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	api := app.Group("/api")
	garden.RegisterRoutes(api, gardenApp.Handler())
}
