// Package config loads moviedash settings from the environment, an optional
// .env file and an optional ~/.moviedash/config.yml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the full client configuration.
type Config struct {
	APIURL   string `yaml:"api_url" env:"MOVIEDASH_API_URL" env-default:"http://127.0.0.1:8080" env-description:"backend base URL"`
	Home     string `yaml:"home" env:"MOVIEDASH_HOME" env-description:"state directory, default ~/.moviedash"`
	Token    string `yaml:"-" env:"MOVIEDASH_TOKEN" env-description:"session token, overrides the token file"`
	LogLevel string `yaml:"log_level" env:"MOVIEDASH_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	LogFile  string `yaml:"log_file" env:"MOVIEDASH_LOG_FILE" env-description:"log file path, - for stderr"`
	TMDB     TMDB   `yaml:"tmdb"`
}

// TMDB configures the catalog client.
type TMDB struct {
	BaseURL         string  `yaml:"base_url" env:"TMDB_API_BASE_URL" env-default:"https://api.themoviedb.org/3"`
	ReadAccessToken string  `yaml:"read_access_token" env:"TMDB_READ_ACCESS_TOKEN" env-description:"v4 read access token"`
	APIKey          string  `yaml:"api_key" env:"TMDB_API_KEY" env-description:"v3 API key, used when no read access token is set"`
	ImageBaseURL    string  `yaml:"image_base_url" env:"TMDB_IMAGE_BASE_URL" env-default:"https://image.tmdb.org/t/p"`
	Language        string  `yaml:"language" env:"TMDB_LANGUAGE" env-default:"en-US"`
	MaxRetries      int     `yaml:"max_retries" env:"TMDB_MAX_RETRIES" env-default:"3"`
	RateLimit       float64 `yaml:"rate_limit" env:"TMDB_RATE_LIMIT" env-default:"20" env-description:"requests per second"`
}

// HasCatalogCredentials reports whether any TMDB credential is configured.
func (t TMDB) HasCatalogCredentials() bool {
	return t.ReadAccessToken != "" || t.APIKey != ""
}

// TokenPath is where the session token is persisted.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Home, "token")
}

// DefaultHome returns $MOVIEDASH_HOME or ~/.moviedash.
func DefaultHome() string {
	if h := os.Getenv("MOVIEDASH_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".moviedash"
	}
	return filepath.Join(home, ".moviedash")
}

// Load reads .env (if present) and then config.yml under the state directory.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; a missing .env is normal
	return LoadFile(filepath.Join(DefaultHome(), "config.yml"))
}

// LoadFile reads path if it exists, then the environment. Environment values
// win over the file.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: %w", statErr)
	}

	if cfg.Home == "" {
		cfg.Home = DefaultHome()
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.Home, "moviedash.log")
	}
	if cfg.TMDB.MaxRetries < 0 {
		cfg.TMDB.MaxRetries = 0
	}
	return cfg, nil
}

// Usage describes every environment variable, for `moviedash help`.
func Usage() string {
	help, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return help
}
