// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	DatabasePath    string        `env:"DATABASE_PATH" envDefault:"wrkcopilot.db"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionSecret   string        `env:"SESSION_SECRET"`
	CatalogPath     string        `env:"CATALOG_PATH"`
	CatalogTTL      time.Duration `env:"CATALOG_TTL" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the given dotenv files, if present, and then parses the
// environment. Variables already set in the environment win over file values.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// RequireSessionSecret reports an error when no signing secret is configured.
func (c Config) RequireSessionSecret() error {
	if len(c.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be set to at least 16 characters")
	}
	return nil
}
