package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. INTERNTRACK_SERVER_PORT.
const EnvPrefix = "INTERNTRACK"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Transport TransportConfig `yaml:"transport" envconfig:"TRANSPORT"`
	DB        DBConfig        `yaml:"db" envconfig:"DB"`
	Log       LogConfig       `yaml:"log" envconfig:"LOG"`
	Auth      AuthConfig      `yaml:"auth" envconfig:"AUTH"`
	Session   SessionConfig   `yaml:"session" envconfig:"SESSION"`
	MCP       MCPConfig       `yaml:"mcp" envconfig:"MCP"`
	Notify    NotifyConfig    `yaml:"notify" envconfig:"NOTIFY"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Metrics   MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
}

type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"HOST"`
	Port         int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	// WriteTimeout is off by default: MCP streams stay open.
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
}

// TransportConfig selects how the server is reached: "http" serves the REST
// API and MCP over HTTP, "stdio" serves MCP only on stdin/stdout.
type TransportConfig struct {
	Mode string `yaml:"mode" envconfig:"MODE"`
}

// DBConfig selects the store. Driver is "sqlite" (uses Path) or "postgres"
// (uses DSN).
type DBConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER"`
	Path   string `yaml:"path" envconfig:"PATH"`
	DSN    string `yaml:"dsn" envconfig:"DSN"`
}

type LogConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" envconfig:"TOKEN_TTL"`
}

type SessionConfig struct {
	// IdleTimeout closes sessions with no action for this long. Zero disables it.
	IdleTimeout time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
}

// MCPConfig holds settings for the MCP surface. In stdio mode there is no
// bearer token, so tools act as DefaultUserEmail.
type MCPConfig struct {
	DefaultUserEmail string `yaml:"default_user_email" envconfig:"DEFAULT_USER_EMAIL"`
}

type NotifyConfig struct {
	TelegramAPIBase string        `yaml:"telegram_api_base" envconfig:"TELEGRAM_API_BASE"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// ExportConfig configures the S3 bucket history exports go to. An empty
// bucket disables export.
type ExportConfig struct {
	Bucket          string        `yaml:"bucket" envconfig:"BUCKET"`
	Region          string        `yaml:"region" envconfig:"REGION"`
	Endpoint        string        `yaml:"endpoint" envconfig:"ENDPOINT"`
	PathStyle       bool          `yaml:"path_style" envconfig:"PATH_STYLE"`
	Prefix          string        `yaml:"prefix" envconfig:"PREFIX"`
	AccessKeyID     string        `yaml:"access_key_id" envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" envconfig:"SECRET_ACCESS_KEY"`
	LinkExpiry      time.Duration `yaml:"link_expiry" envconfig:"LINK_EXPIRY"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout: 15 * time.Second,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Driver: "sqlite",
			Path:   "interntrack.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Session: SessionConfig{
			IdleTimeout: 12 * time.Hour,
		},
		Notify: NotifyConfig{
			Timeout: 10 * time.Second,
		},
		Export: ExportConfig{
			Region:     "us-east-1",
			Prefix:     "history",
			LinkExpiry: 15 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables,
// in that order, and validates the result.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvPrefix + "_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}

	cfg.Transport.Mode = strings.ToLower(strings.TrimSpace(cfg.Transport.Mode))
	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for missing or contradictory values.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		errs = append(errs, fmt.Errorf("invalid transport mode %q (must be http or stdio)", c.Transport.Mode))
	}
	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, errors.New("db.path is required for the sqlite driver"))
		}
	case "postgres":
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid db driver %q (must be sqlite or postgres)", c.DB.Driver))
	}
	if c.Transport.Mode == "http" && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 characters"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Session.IdleTimeout < 0 {
		errs = append(errs, errors.New("session.idle_timeout must not be negative"))
	}
	if c.Transport.Mode == "stdio" && c.MCP.DefaultUserEmail == "" {
		errs = append(errs, errors.New("mcp.default_user_email is required in stdio mode"))
	}
	if c.Export.Bucket != "" && (c.Export.AccessKeyID == "") != (c.Export.SecretAccessKey == "") {
		errs = append(errs, errors.New("export access key id and secret must be set together"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
