package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/dpohero.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	// CatalogPath overrides the embedded mission catalog when set.
	CatalogPath string `env:"CATALOG_PATH"`
	SPADir      string `env:"SPA_DIR" envDefault:"../web/dist"`
	// AdminEmail and AdminPassword seed the educator account on first
	// boot. Seeding is skipped when the password is empty.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"educator@dpohero.local"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
