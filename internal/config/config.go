// Package config provides configuration loading and management for the registry server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/trustmodel/registry-server/internal/storage"
	"github.com/trustmodel/registry-server/internal/telemetry"
)

// EnvPrefix is the prefix for environment variable overrides, so the
// listen address becomes MODREG_ADDRESS, the GCS bucket
// MODREG_STORAGE_BUCKET, and so on.
const EnvPrefix = "MODREG"

const (
	// DefaultAddress is the listen address used when none is configured.
	DefaultAddress = ":8080"

	// DefaultScoringWorkers bounds concurrent artifact scoring.
	DefaultScoringWorkers = 8
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Server holds the HTTP listener settings
	Server ServerConfig `yaml:"server,omitempty"`

	// Storage selects and configures the artifact store backend
	Storage storage.Config `yaml:"storage,omitempty"`

	// Hub configures access to the model hub API
	Hub HubConfig `yaml:"hub,omitempty"`

	// GitHub configures access to the GitHub API used by the license
	// metric fallback
	GitHub GitHubConfig `yaml:"github,omitempty"`

	// Scoring tunes the metric evaluation pipeline
	Scoring ScoringConfig `yaml:"scoring,omitempty"`

	// Telemetry enables the Prometheus metrics endpoint
	Telemetry telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServerConfig defines the HTTP listener settings
type ServerConfig struct {
	// Address is the host:port the server listens on
	Address string `yaml:"address,omitempty"`
}

// HubConfig defines model hub API access settings
type HubConfig struct {
	// Endpoint is the base URL of the hub API. Empty selects the public
	// endpoint.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Token is a bearer token for authenticated hub requests
	Token string `yaml:"token,omitempty"`
}

// GitHubConfig defines GitHub API access settings
type GitHubConfig struct {
	// Token is a personal access token. Unauthenticated access works but
	// is aggressively rate limited.
	Token string `yaml:"token,omitempty"`
}

// ScoringConfig tunes the metric evaluation pipeline
type ScoringConfig struct {
	// Workers is the number of artifacts scored concurrently
	Workers int `yaml:"workers,omitempty"`

	// GateThreshold is the minimum net score for model ingestion. Nil
	// selects the default threshold.
	GateThreshold *float64 `yaml:"gateThreshold,omitempty"`
}

// GetAddress returns the listen address, applying the default
func (c *Config) GetAddress() string {
	if c.Server.Address == "" {
		return DefaultAddress
	}
	return c.Server.Address
}

// GetScoringWorkers returns the scoring concurrency, applying the default
func (c *Config) GetScoringWorkers() int {
	if c.Scoring.Workers <= 0 {
		return DefaultScoringWorkers
	}
	return c.Scoring.Workers
}

// LoadConfig loads configuration from an optional YAML file, then applies
// MODREG_* environment overrides
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	var config Config
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	config.applyEnvOverrides()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides overlays MODREG_* environment variables on top of the
// file-provided values
func (c *Config) applyEnvOverrides() {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if s := v.GetString("address"); s != "" {
		c.Server.Address = s
	}
	if s := v.GetString("storage.type"); s != "" {
		c.Storage.Type = s
	}
	if s := v.GetString("storage.bucket"); s != "" {
		c.Storage.Bucket = s
	}
	if s := v.GetString("hub.endpoint"); s != "" {
		c.Hub.Endpoint = s
	}
	if s := v.GetString("hub.token"); s != "" {
		c.Hub.Token = s
	}
	if s := v.GetString("github.token"); s != "" {
		c.GitHub.Token = s
	}
	if s := v.GetString("scoring.workers"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			c.Scoring.Workers = n
		}
	}
	if s := v.GetString("scoring.gate_threshold"); s != "" {
		if gate, err := strconv.ParseFloat(s, 64); err == nil {
			c.Scoring.GateThreshold = &gate
		}
	}
	if s := v.GetString("telemetry.enabled"); s != "" {
		if enabled, err := strconv.ParseBool(s); err == nil {
			c.Telemetry.Enabled = enabled
		}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Storage.Type {
	case "", storage.TypeMemory:
	case storage.TypeGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	if c.Scoring.Workers < 0 {
		return fmt.Errorf("scoring.workers must not be negative")
	}
	if gate := c.Scoring.GateThreshold; gate != nil && (*gate < 0 || *gate > 1) {
		return fmt.Errorf("scoring.gateThreshold must be between 0 and 1")
	}

	return nil
}
