// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"memarea/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog contains component catalog settings
	Catalog CatalogConfig `json:"catalog"`

	// Estimate contains tabulation settings
	Estimate EstimateConfig `json:"estimate"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Storage contains run history settings
	Storage StorageConfig `json:"storage"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig locates the component catalog
type CatalogConfig struct {
	// Path is the default catalog file
	Path string `json:"path"`

	// Format overrides extension-based detection
	Format string `json:"format,omitempty"`
}

// EstimateConfig contains tabulation settings
type EstimateConfig struct {
	// Scale multiplies every reported area
	Scale float64 `json:"scale"`

	// FromNode and ToNode derive a scale from technology nodes (nm);
	// zero disables node scaling
	FromNode int `json:"from_node,omitempty"`
	ToNode   int `json:"to_node,omitempty"`

	// Workers bounds concurrent tabulations; zero means one per CPU
	Workers int `json:"workers"`

	// ContinueOnError skips failed configurations instead of aborting
	ContinueOnError bool `json:"continue_on_error"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// AreaOnly prints only total areas
	AreaOnly bool `json:"area_only"`

	// NoColor disables terminal colors
	NoColor bool `json:"no_color"`
}

// StorageConfig contains run history settings
type StorageConfig struct {
	// Backend is "file" or "memory"
	Backend string `json:"backend"`

	// Directory holds stored runs for the file backend
	Directory string `json:"directory"`

	// Project groups stored runs
	Project string `json:"project"`
}

// DefaultPath is $HOME/.memarea.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".memarea.json")
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			Path: "db.yaml",
		},
		Estimate: EstimateConfig{
			Scale: 1,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
		},
		Storage: StorageConfig{
			Backend:   "file",
			Directory: filepath.Join(homeDir, ".memarea", "runs"),
			Project:   "default",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate checks settings that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if c.Estimate.Scale <= 0 {
		return fmt.Errorf("estimate.scale must be positive, got %g", c.Estimate.Scale)
	}
	if c.Estimate.Workers < 0 {
		return fmt.Errorf("estimate.workers must not be negative, got %d", c.Estimate.Workers)
	}
	if (c.Estimate.FromNode == 0) != (c.Estimate.ToNode == 0) {
		return fmt.Errorf("estimate.from_node and estimate.to_node must be set together")
	}
	return nil
}

// Load loads configuration from a file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

var (
	mu           sync.RWMutex
	globalConfig = Default()
)

// Get returns the global configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = config
}
