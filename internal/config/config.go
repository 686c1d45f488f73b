package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/schaermu/webglsld/internal/shader"
)

// ErrorPolicy defines what the sync loop does when a pair fails
type ErrorPolicy string

const (
	// ErrorAbort stops the loop on the first failure.
	ErrorAbort ErrorPolicy = "abort"
	// ErrorIsolate logs the failing pair and keeps syncing the others.
	ErrorIsolate ErrorPolicy = "isolate"
)

// Defaults for the polling loop
const (
	DefaultInterval     = time.Second
	DefaultStartupDelay = 5 * time.Second
)

// Config represents the complete webglsld configuration
type Config struct {
	Watch WatchConfig `yaml:"watch" toml:"watch"`
	Sync  SyncConfig  `yaml:"sync" toml:"sync"`
	Log   LogConfig   `yaml:"log" toml:"log"`
}

// WatchConfig configures what is watched
type WatchConfig struct {
	Source    string               `yaml:"source" toml:"source"`
	Dest      string               `yaml:"dest" toml:"dest"`
	SourceExt string               `yaml:"source_ext" toml:"source_ext"`
	ModuleExt string               `yaml:"module_ext" toml:"module_ext"`
	Pairing   shader.PairingPolicy `yaml:"pairing" toml:"pairing"`
	Notify    bool                 `yaml:"notify" toml:"notify"`
}

// SyncConfig configures loop timing and failure handling
type SyncConfig struct {
	Interval     time.Duration `yaml:"interval" toml:"interval"`
	StartupDelay time.Duration `yaml:"startup_delay" toml:"startup_delay"`
	OnError      ErrorPolicy   `yaml:"on_error" toml:"on_error"`
}

// LogConfig configures the logger. File enables size-based rotation.
type LogConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.Sync.StartupDelay = DefaultStartupDelay
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file. The format is chosen by
// extension: .toml is TOML, anything else YAML.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Decode over the defaults so absent keys keep them and an explicit
	// startup_delay of 0 is honored
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.expandEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but returns the defaults when the file
// does not exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(os.ExpandEnv(path)); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// DefaultPath returns $HOME/.config/webglsld/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "webglsld", "config.yaml"), nil
}

// expandEnv expands environment variables in all path fields
func (c *Config) expandEnv() {
	c.Watch.Source = os.ExpandEnv(c.Watch.Source)
	c.Watch.Dest = os.ExpandEnv(c.Watch.Dest)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Watch.SourceExt == "" {
		c.Watch.SourceExt = shader.DefaultSourceExt
	}
	if c.Watch.ModuleExt == "" {
		c.Watch.ModuleExt = shader.DefaultModuleExt
	}
	if c.Watch.Pairing == "" {
		c.Watch.Pairing = shader.PairingFanOut
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = DefaultInterval
	}
	if c.Sync.OnError == "" {
		c.Sync.OnError = ErrorAbort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
}

// Validate checks the configuration for errors. Source and destination are
// checked separately by RequirePaths since they usually come from arguments.
func (c *Config) Validate() error {
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive, got %s", c.Sync.Interval)
	}
	if c.Sync.StartupDelay < 0 {
		return fmt.Errorf("sync.startup_delay must not be negative, got %s", c.Sync.StartupDelay)
	}

	switch c.Sync.OnError {
	case ErrorAbort, ErrorIsolate:
		// valid
	default:
		return fmt.Errorf("invalid sync.on_error policy: %s (must be abort or isolate)", c.Sync.OnError)
	}

	if !c.Watch.Pairing.Valid() {
		return fmt.Errorf("invalid watch.pairing policy: %s (must be fanout, first, or strict)", c.Watch.Pairing)
	}

	if c.Watch.SourceExt == c.Watch.ModuleExt {
		return fmt.Errorf("watch.source_ext and watch.module_ext must differ (both %s)", c.Watch.SourceExt)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format: %s (must be text or json)", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}

	return nil
}

// RequirePaths checks that both watch paths are set
func (c *Config) RequirePaths() error {
	if c.Watch.Source == "" {
		return fmt.Errorf("watch.source is required")
	}
	if c.Watch.Dest == "" {
		return fmt.Errorf("watch.dest is required")
	}
	return nil
}

// ShaderOptions returns the discovery options derived from the watch config
func (c *Config) ShaderOptions() shader.Options {
	return shader.Options{
		SourceExt: c.Watch.SourceExt,
		ModuleExt: c.Watch.ModuleExt,
		Pairing:   c.Watch.Pairing,
	}
}
