package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIScheme             string        `mapstructure:"api_scheme"`
	APIHost               string        `mapstructure:"api_host"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	EndpointsFile         string        `mapstructure:"endpoints_file"`

	FixturesType string `mapstructure:"fixtures_type"`
	FixturesPath string `mapstructure:"fixtures_path"`
	FixturesFile string `mapstructure:"fixtures_file"`

	AccessToken string `mapstructure:"access_token"`
	UserID      string `mapstructure:"user_id"`
	UserName    string `mapstructure:"user_name"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "simplest-networking")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_scheme", "https")
	v.SetDefault("api_host", "api.myapp.com")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("endpoints_file", "")
	v.SetDefault("fixtures_type", "none")
	v.SetDefault("fixtures_path", "./data/fixtures.db")
	v.SetDefault("fixtures_file", "")
	v.SetDefault("access_token", "123")
	v.SetDefault("user_id", "1")
	v.SetDefault("user_name", "SA")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RequestTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	cfg.APIScheme = strings.TrimSpace(cfg.APIScheme)
	cfg.APIHost = strings.TrimSpace(cfg.APIHost)
	if cfg.APIScheme == "" || cfg.APIHost == "" {
		return nil, fmt.Errorf("api_scheme and api_host must not be empty")
	}

	cfg.FixturesType = strings.ToLower(strings.TrimSpace(cfg.FixturesType))

	return &cfg, nil
}

// Offline reports whether requests are answered from fixtures instead of the network.
func (c Config) Offline() bool {
	switch c.FixturesType {
	case "", "none", "disabled":
		return false
	default:
		return true
	}
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.AccessToken != "" {
		c.AccessToken = "***"
	}
	return c
}
