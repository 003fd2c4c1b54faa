// ABOUTME: Configuration loader for the tictactoe client
// ABOUTME: Reads .env, an optional config.yml and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// AppName names the config directory
const AppName = "tictactoe"

// Token store backends
const (
	TokenStoreFile  = "file"
	TokenStoreRedis = "redis"
)

type Config struct {
	// Authority
	APIURL         string        `yaml:"api-url" env:"TICTACTOE_API_URL" env-default:"http://localhost:8000"`
	RequestTimeout time.Duration `yaml:"request-timeout" env:"TICTACTOE_REQUEST_TIMEOUT" env-default:"30s"`
	PollInterval   time.Duration `yaml:"poll-interval" env:"TICTACTOE_POLL_INTERVAL" env-default:"1750ms"`

	// Session persistence
	ConfigDir  string `yaml:"-" env:"TICTACTOE_CONFIG_DIR"`
	TokenStore string `yaml:"token-store" env:"TICTACTOE_TOKEN_STORE" env-default:"file"`
	Redis      Redis  `yaml:"redis"`

	// Logging
	LogLevel  string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log-format" env:"LOG_FORMAT" env-default:"text"`
}

// Redis locates a shared token store
type Redis struct {
	Addr    string `yaml:"addr" env:"TICTACTOE_REDIS_ADDR" env-default:"localhost:6379"`
	Profile string `yaml:"profile" env:"TICTACTOE_REDIS_PROFILE" env-default:"default"`
}

// Load builds the configuration. configDir overrides TICTACTOE_CONFIG_DIR
// and the XDG default; a config.yml inside it is read when present.
// Environment variables take precedence over the file.
func Load(configDir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	dir := configDir
	if dir == "" {
		dir = os.Getenv("TICTACTOE_CONFIG_DIR")
	}
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{}
	path := filepath.Join(dir, "config.yml")
	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	cfg.ConfigDir = dir
	cfg.APIURL = ensureScheme(strings.TrimRight(cfg.APIURL, "/"))
	cfg.TokenStore = strings.ToLower(strings.TrimSpace(cfg.TokenStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("TICTACTOE_API_URL is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("TICTACTOE_POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("TICTACTOE_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	switch c.TokenStore {
	case TokenStoreFile:
	case TokenStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("TICTACTOE_REDIS_ADDR is required when TICTACTOE_TOKEN_STORE=redis")
		}
	default:
		return fmt.Errorf("TICTACTOE_TOKEN_STORE must be %q or %q, got %q", TokenStoreFile, TokenStoreRedis, c.TokenStore)
	}
	return nil
}

// DefaultConfigDir returns the XDG config directory for the app
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// ensureScheme adds a scheme if the URL has none: http for local hosts,
// https otherwise
func ensureScheme(url string) string {
	if url == "" || strings.Contains(url, "://") {
		return url
	}
	if strings.HasPrefix(url, "localhost") || strings.HasPrefix(url, "127.0.0.1") {
		return "http://" + url
	}
	return "https://" + url
}
