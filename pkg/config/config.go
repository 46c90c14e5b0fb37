// Package config loads the stopclean YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
	"github.com/renjie/prism-stops/pkg/core/services/recoders"
)

// Config holds all stopclean configuration.
type Config struct {
	DataDir        string               `yaml:"data_dir"`
	FilePattern    string               `yaml:"file_pattern"` // fmt pattern with one %d for the year
	Years          []int                `yaml:"years"`
	NAValues       []string             `yaml:"na_values"`
	ForcePrefix    string               `yaml:"force_prefix"`
	Fields         domain.RawFieldNames `yaml:"fields"`
	FormatPolicies map[int]string       `yaml:"format_policies"` // year -> YMD | MDY
	Concurrency    int                  `yaml:"concurrency"`

	Storage    StorageConfig    `yaml:"storage"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Validation ValidationConfig `yaml:"validation"`
}

// StorageConfig configures the SQLite store.
type StorageConfig struct {
	Path   string `yaml:"path"`
	Upsert string `yaml:"upsert"` // REPLACE | KEEP_EXISTING
}

// MetricsConfig configures the prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // empty disables the export
}

// ValidationConfig overrides the default check battery when Checks is set.
type ValidationConfig struct {
	Checks []domain.CheckSpec `yaml:"checks,omitempty"`
}

// DefaultConfig returns the configuration for the 2006-2012 stop files.
func DefaultConfig() *Config {
	policies := make(map[int]string)
	for year, f := range domain.DefaultFormatPolicy() {
		policies[year] = string(f)
	}
	return &Config{
		DataDir:        "data",
		FilePattern:    "sqf-%d.csv",
		Years:          domain.DefaultFormatPolicy().Years(),
		NAValues:       []string{"NA", ""},
		ForcePrefix:    recoders.DefaultForcePrefix,
		Fields:         domain.DefaultRawFieldNames(),
		FormatPolicies: policies,
		Concurrency:    4,
		Storage: StorageConfig{
			Path:   filepath.Join("data", "stops.db"),
			Upsert: string(ports.UpsertStrategyReplace),
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STOPCLEAN_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("STOPCLEAN_DB"); v != "" {
		c.Storage.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.Count(c.FilePattern, "%d") != 1 {
		return fmt.Errorf("file_pattern %q must contain exactly one %%d", c.FilePattern)
	}
	if len(c.Years) == 0 {
		return fmt.Errorf("no years configured")
	}
	policy, err := c.FormatPolicy()
	if err != nil {
		return err
	}
	for _, y := range c.Years {
		if _, err := policy.Resolve(y); err != nil {
			return fmt.Errorf("years: %w", err)
		}
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if _, err := c.UpsertStrategy(); err != nil {
		return err
	}
	return nil
}

// FormatPolicy converts format_policies into the domain mapping.
func (c *Config) FormatPolicy() (domain.FormatPolicy, error) {
	policy := make(domain.FormatPolicy, len(c.FormatPolicies))
	for year, name := range c.FormatPolicies {
		f, err := domain.ParseDateFormat(name)
		if err != nil {
			return nil, fmt.Errorf("format_policies[%d]: %w", year, err)
		}
		policy[year] = f
	}
	return policy, nil
}

// UpsertStrategy parses storage.upsert; empty means REPLACE.
func (c *Config) UpsertStrategy() (ports.UpsertStrategy, error) {
	switch s := ports.UpsertStrategy(strings.ToUpper(c.Storage.Upsert)); s {
	case "", ports.UpsertStrategyReplace:
		return ports.UpsertStrategyReplace, nil
	case ports.UpsertStrategyKeepExisting:
		return s, nil
	default:
		return "", fmt.Errorf("invalid storage.upsert: %s (valid: REPLACE, KEEP_EXISTING)", c.Storage.Upsert)
	}
}
