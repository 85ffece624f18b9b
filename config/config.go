// Package config loads the sbk configuration from the environment.
//
// An optional .env file is read first, variables already set in the
// environment take precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store engines.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

type Config struct {
	LogLevel string `env:"SBK_LOG_LEVEL" envDefault:"info"`
	Store    string `env:"SBK_STORE" envDefault:"sqlite"`
	DBPath   string `env:"SBK_DB_PATH" envDefault:"stocks.db"`
	FilePath string `env:"SBK_FILE_PATH" envDefault:"stocks.jsonl"`
	Yahoo    Yahoo
}

type Yahoo struct {
	ChartURL string        `env:"YAHOO_CHART_URL" envDefault:"https://query1.finance.yahoo.com"`
	PageURL  string        `env:"YAHOO_PAGE_URL" envDefault:"https://finance.yahoo.com"`
	Timeout  time.Duration `env:"YAHOO_TIMEOUT" envDefault:"30s"` // one HTTP request
	Rate     int           `env:"YAHOO_RATE" envDefault:"30"`     // requests per minute
	CacheDir string        `env:"YAHOO_CACHE_DIR"`
	Debug    bool          `env:"YAHOO_DEBUG" envDefault:"false"`

	// FetchTimeout bounds the retrieval of one stock, fallback and throttling
	// included. Zero means no bound.
	FetchTimeout time.Duration `env:"YAHOO_FETCH_TIMEOUT" envDefault:"2m"`
}

// Load reads the dotenv files, if they exist, then parses the environment.
//
// With no files, ".env" is used.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, name := range dotenv {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot read %q: %w", name, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}
	switch cfg.Store {
	case StoreSQLite, StoreFile:
	default:
		return nil, fmt.Errorf("parse config error: SBK_STORE=%q, want %q or %q", cfg.Store, StoreSQLite, StoreFile)
	}
	return cfg, nil
}
