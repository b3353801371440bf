// ABOUTME: Configuration loader for the mycask CLI
// ABOUTME: Loads settings from an optional .env file and environment variables

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/markalston/mycask/cli/internal/credstore"
)

// DefaultAPIURL is used when neither flag nor environment sets the API URL
const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	// API
	APIURL      string        `env:"MYCASK_API_URL" envDefault:"http://localhost:8000"`
	HTTPTimeout time.Duration `env:"MYCASK_HTTP_TIMEOUT" envDefault:"30s"`
	AllProxy    string        `env:"MYCASK_ALL_PROXY"` // ssh+socks5://user@host:port?private-key=/path

	// Local state (credentials, debug log); defaults to the XDG config dir
	ConfigDir string `env:"MYCASK_CONFIG_DIR"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads envFiles (or ./.env when none are given) into the environment
// without overriding variables that are already set, then parses the
// environment. A missing default .env is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = credstore.DefaultConfigDir()
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("MYCASK_HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}

	return cfg, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}
