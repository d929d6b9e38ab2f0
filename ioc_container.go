package main

import (
	"context"
	"fmt"

	"github.com/HAtt1la/gardenatlas/config"
	"github.com/HAtt1la/gardenatlas/database"
	"github.com/HAtt1la/gardenatlas/garden"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// IOC container
type App struct {
	db       *gorm.DB
	repo     *garden.Repository
	forecast *garden.ForecastEngine
	care     *garden.CareEngine
	photos   *garden.PhotoService
	codec    *garden.Codec
	config   *config.Config
	log      zerolog.Logger
	appCtx   context.Context
}

type AppOption func(*App) error

func NewApp(ctx context.Context, log zerolog.Logger, opts ...AppOption) (*App, error) {
	app := &App{
		appCtx: ctx,
		log:    log,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if app.config == nil {
		cfg, err := config.New()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		app.config = cfg
	}

	// Initialize database if not provided
	if app.db == nil {
		db, err := database.Open(app.config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db
	}

	if app.config.AutoMigrate {
		if err := database.Migrate(app.db); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	app.repo = garden.NewRepository(app.db)
	app.forecast = garden.NewForecastEngine(app.repo)
	app.care = garden.NewCareEngine(app.repo)
	app.photos = garden.NewPhotoService(app.db, app.repo)
	app.codec = garden.NewCodec(app.db)

	return app, nil
}

func (a *App) Handler() *garden.Handler {
	return garden.NewHandler(a.repo, a.forecast, a.care, a.photos, a.codec, a.log)
}

func WithDatabase(db *gorm.DB) AppOption {
	return func(a *App) error {
		a.db = db
		return nil
	}
}

func WithConfig(cfg *config.Config) AppOption {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

func WithDBPath(path string) AppOption {
	return func(a *App) error {
		if a.config == nil {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			a.config = cfg
		}
		a.config.DBPath = path
		return nil
	}
}
