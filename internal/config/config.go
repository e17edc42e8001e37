package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config holds all runtime settings. Values come from the environment, with
// an optional .env file for local development.
type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	ClientOrigin  string `mapstructure:"CLIENT_ORIGIN"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DataDir       string `mapstructure:"DATA_DIR"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	EmailEnabled  bool   `mapstructure:"EMAIL_ENABLED"`
	EmailFrom     string `mapstructure:"EMAIL_FROM"`
	AWSRegion     string `mapstructure:"AWS_REGION"`
}

// LoadConfig reads configuration from the environment and, when present, a
// .env file in the given directory.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:3000")
	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("EMAIL_ENABLED", false)
	v.SetDefault("EMAIL_FROM", "")
	v.SetDefault("AWS_REGION", "eu-central-1")
	v.SetDefault("JWT_SECRET", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}
	switch cfg.StorageDriver {
	case StorageFile:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("config: DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.EmailEnabled && cfg.EmailFrom == "" {
		return Config{}, errors.New("config: EMAIL_FROM is required when EMAIL_ENABLED is set")
	}
	return cfg, nil
}
