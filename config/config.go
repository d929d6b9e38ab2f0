// Package config loads application configuration from the environment.
package config

import "github.com/kelseyhightower/envconfig"

// Config holds the runtime configuration. Environment variables are parsed
// from the GARDEN_ prefix, e.g. GARDEN_DB_PATH.
type Config struct {
	AppName     string `envconfig:"APP_NAME" default:"GardenAtlas"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":3000"`
	DBPath      string `envconfig:"DB_PATH" default:"gardenatlas.db"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
}

func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("garden", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
