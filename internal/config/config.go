// Package config loads and validates application configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Preference store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Seed          SeedConfig          `yaml:"seed"`
	Preferences   PreferencesConfig   `yaml:"preferences"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	HandlerTimeout  time.Duration `yaml:"handler_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig describes Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// SeedConfig describes where the catalog seed comes from. With no
// directories the embedded default catalog is used.
type SeedConfig struct {
	Directories []string `yaml:"directories"`
	AllowReset  bool     `yaml:"allow_reset"`
}

// PreferencesConfig selects and configures the preference store.
type PreferencesConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	AddrEnv   string `yaml:"addr_env"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	DSNEnv    string `yaml:"dsn_env"`
	Table     string `yaml:"table"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	LogFile  LogFileConfig `yaml:"log_file"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// LogFileConfig enables a rotated log file alongside stdout.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			HandlerTimeout:  25 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
				MaxAge:         86400,
			},
		},
		Seed: SeedConfig{
			AllowReset: true,
		},
		Preferences: PreferencesConfig{
			Driver:    DriverMemory,
			AddrEnv:   "ASSETATTR_REDIS_ADDR",
			KeyPrefix: "assetattr:",
			DSNEnv:    "ASSETATTR_DATABASE_URL",
			Table:     "preferences",
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			LogFile: LogFileConfig{
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "server.max_body_bytes must be positive")
	}

	p := c.Preferences
	switch p.Driver {
	case DriverMemory:
	case DriverFile:
		if p.Path == "" {
			errs = append(errs, "preferences.path is required for the file driver")
		}
	case DriverRedis:
		if p.AddrEnv == "" {
			errs = append(errs, "preferences.addr_env is required for the redis driver")
		}
		if p.DB < 0 {
			errs = append(errs, "preferences.db must not be negative")
		}
	case DriverPostgres:
		if p.DSNEnv == "" {
			errs = append(errs, "preferences.dsn_env is required for the postgres driver")
		}
		if !identifierPattern.MatchString(p.Table) {
			errs = append(errs, fmt.Sprintf("preferences.table %q is not a valid identifier", p.Table))
		}
	default:
		errs = append(errs, fmt.Sprintf("preferences.driver %q must be one of memory, file, redis, postgres", p.Driver))
	}

	t := c.Observability.Tracing
	if t.Enabled {
		if t.Exporter != "otlp" && t.Exporter != "stdout" {
			errs = append(errs, fmt.Sprintf("observability.tracing.exporter %q must be otlp or stdout", t.Exporter))
		}
		if t.SamplingRate < 0 || t.SamplingRate > 1 {
			errs = append(errs, "observability.tracing.sampling_rate must be between 0 and 1")
		}
	}
	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, "observability.metrics.path must start with /")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads ASSETATTR_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ASSETATTR_SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ASSETATTR_SEED_DIRECTORIES"); v != "" {
		var dirs []string
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				dirs = append(dirs, d)
			}
		}
		cfg.Seed.Directories = dirs
	}
	if v := os.Getenv("ASSETATTR_PREFERENCES_DRIVER"); v != "" {
		cfg.Preferences.Driver = v
	}
	if v := os.Getenv("ASSETATTR_PREFERENCES_PATH"); v != "" {
		cfg.Preferences.Path = v
	}
	if v := os.Getenv("ASSETATTR_OBSERVABILITY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ASSETATTR_OBSERVABILITY_LOG_FILE"); v != "" {
		cfg.Observability.LogFile.Path = v
	}
}
