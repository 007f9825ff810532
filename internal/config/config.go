package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the kubecred configuration file.
type Config struct {
	// IssuerURL is the base URL of the kubeconfig issuance endpoint.
	IssuerURL string `yaml:"issuer_url,omitempty"`
	// Local renders kubeconfigs from the current cluster instead of calling
	// the issuer.
	Local bool `yaml:"local,omitempty"`
	// Timeout bounds a single issuance request, e.g. "10s".
	Timeout string `yaml:"timeout,omitempty"`
	// RefreshInterval is how often RBAC bindings are reloaded, e.g. "30s".
	// Empty or "0" disables refresh.
	RefreshInterval string `yaml:"refresh_interval,omitempty"`
	// Label replaces the default button label.
	Label string `yaml:"label,omitempty"`
	// LogFile receives diagnostic logs. Empty discards them.
	LogFile string `yaml:"log_file,omitempty"`

	configDir string
}

const (
	defaultTimeout         = "10s"
	defaultRefreshInterval = "30s"
)

// Default returns a Config with defaults applied.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	path = expandHome(path)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	// #nosec G304 -- Config path comes from CLI flag
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.configDir = filepath.Dir(absPath)
	if cfg.LogFile != "" {
		cfg.LogFile = cfg.resolvePath(cfg.LogFile)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == "" {
		c.Timeout = defaultTimeout
	}
	if c.RefreshInterval == "" {
		c.RefreshInterval = defaultRefreshInterval
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.Local && c.IssuerURL == "" {
		return fmt.Errorf("issuer_url is required unless local is set")
	}
	if c.IssuerURL != "" && !strings.HasPrefix(c.IssuerURL, "http://") && !strings.HasPrefix(c.IssuerURL, "https://") {
		return fmt.Errorf("issuer_url must be an http or https URL: %q", c.IssuerURL)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.RefreshDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", c.Timeout)
}

// RefreshDuration parses RefreshInterval.
func (c *Config) RefreshDuration() (time.Duration, error) {
	return parseDuration("refresh_interval", c.RefreshInterval)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" || value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, value)
	}
	return d, nil
}

func (c *Config) resolvePath(path string) string {
	path = expandHome(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.configDir, path)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
