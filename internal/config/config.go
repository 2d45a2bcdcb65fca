// Package config loads socialdash configuration from an optional YAML file
// with environment variable overrides. Secrets only come from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is read when --config is not given.
const DefaultPath = "config.yaml"

// Config holds all configuration for socialdash.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     int    `yaml:"port" env:"PORT" env-default:"5000" validate:"min=1,max=65535"`

	// CORSAllowedOrigins is a comma-separated list; "*" allows any origin.
	CORSAllowedOrigins string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`

	// AskRateLimit is the number of assistant requests allowed per client IP per minute. 0 disables it.
	AskRateLimit int `yaml:"ask_rate_limit" env:"ASK_RATE_LIMIT" env-default:"20" validate:"min=0"`

	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"60s"`
}

// DatabaseConfig holds both PostgreSQL credentials. The read-only user backs
// every model-generated query and must be a different role.
type DatabaseConfig struct {
	Host             string `yaml:"host" env:"DB_HOST" env-default:"localhost" validate:"required"`
	Port             int    `yaml:"port" env:"DB_PORT" env-default:"5432" validate:"min=1,max=65535"`
	Name             string `yaml:"name" env:"DB_NAME" env-default:"socialdash" validate:"required"`
	User             string `yaml:"user" env:"DB_USER" env-default:"socialdash" validate:"required"`
	Password         string `yaml:"-" env:"DB_PASSWORD"`
	ReadOnlyUser     string `yaml:"read_only_user" env:"READ_ONLY_DB_USER" validate:"required,nefield=User"`
	ReadOnlyPassword string `yaml:"-" env:"READ_ONLY_DB_PASSWORD"`
	SSLMode          string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConnections   int32  `yaml:"max_connections" env:"DB_MAX_CONNECTIONS" env-default:"25" validate:"min=1"`
}

// LLMConfig selects the model provider used by the query assistant.
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"anthropic" validate:"oneof=anthropic openai"`
	Model       string  `yaml:"model" env:"LLM_MODEL"`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"`
	BaseURL     string  `yaml:"base_url" env:"LLM_BASE_URL"`
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.1" validate:"min=0,max=2"`
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"4000" validate:"min=1"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	File  string `yaml:"file" env:"LOG_FILE"`
}

// Load reads path when it exists and the environment otherwise.
// An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.applyProviderKey()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProviderKey falls back to the provider's conventional key variable.
func (c *Config) applyProviderKey() {
	if c.LLM.APIKey != "" {
		return
	}
	switch c.LLM.Provider {
	case "openai":
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	default:
		c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// PrimaryDSN is the read-write connection string used by the dashboard and migrations.
func (d DatabaseConfig) PrimaryDSN() string {
	return d.dsn(d.User, d.Password)
}

// ReadOnlyDSN is the connection string used for model-generated queries.
func (d DatabaseConfig) ReadOnlyDSN() string {
	return d.dsn(d.ReadOnlyUser, d.ReadOnlyPassword)
}

func (d DatabaseConfig) dsn(user, password string) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.BindAddr, strconv.Itoa(s.Port))
}

// AllowedOrigins splits CORSAllowedOrigins.
func (s ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
