// Package config loads the YAML configuration shared by the commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"wiki_router/pkg/graph"
	"wiki_router/pkg/logging"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the root of the configuration file.
type Config struct {
	Server ServerConfig   `yaml:"server"`
	Graph  GraphConfig    `yaml:"graph"`
	Search SearchConfig   `yaml:"search"`
	Log    logging.Config `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	MaxConcurrent   int           `yaml:"max_concurrent" validate:"gte=1"`
	CORSOrigin      string        `yaml:"cors_origin"`
}

// GraphConfig locates the graph file.
type GraphConfig struct {
	// Path is a local file or an s3://bucket/key object.
	Path string `yaml:"path" validate:"required"`

	S3Endpoint string `yaml:"s3_endpoint" validate:"omitempty,hostname_port"`
	S3Region   string `yaml:"s3_region"`
	S3UseSSL   bool   `yaml:"s3_use_ssl"`
	// Credentials are read from these environment variables, never from
	// the file itself.
	S3AccessKeyEnv string `yaml:"s3_access_key_env"`
	S3SecretKeyEnv string `yaml:"s3_secret_key_env"`
}

// ObjectStore resolves the S3 settings, reading credentials from the
// environment.
func (g GraphConfig) ObjectStore() graph.ObjectStoreConfig {
	return graph.ObjectStoreConfig{
		Endpoint:  g.S3Endpoint,
		AccessKey: os.Getenv(g.S3AccessKeyEnv),
		SecretKey: os.Getenv(g.S3SecretKeyEnv),
		Region:    g.S3Region,
		UseSSL:    g.S3UseSSL,
	}
}

// SearchConfig holds admission control and title lookup limits.
type SearchConfig struct {
	MemoryBudgetBytes int64   `yaml:"memory_budget_bytes" validate:"gte=0"`
	RatePerSecond     float64 `yaml:"rate_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
	TitleLimit        int     `yaml:"title_limit" validate:"gte=1,ltefield=MaxTitleLimit"`
	MaxTitleLimit     int     `yaml:"max_title_limit" validate:"gte=1"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxConcurrent:   runtime.NumCPU() * 2,
			CORSOrigin:      "*",
		},
		Graph: GraphConfig{
			Path:           "wiki.graph",
			S3UseSSL:       true,
			S3AccessKeyEnv: "WIKI_ROUTER_S3_ACCESS_KEY",
			S3SecretKeyEnv: "WIKI_ROUTER_S3_SECRET_KEY",
		},
		Search: SearchConfig{
			MemoryBudgetBytes: 2 << 30,
			TitleLimit:        10,
			MaxTitleLimit:     100,
		},
		Log: logging.Config{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// yields the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
