package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Firefly configuration
type Config struct {
	Mailbox  MailboxConfig  `mapstructure:"mailbox" yaml:"mailbox"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Frontend FrontendConfig `mapstructure:"frontend" yaml:"frontend"`
	Doorbell DoorbellConfig `mapstructure:"doorbell" yaml:"doorbell"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	TUI      TUIConfig      `mapstructure:"tui" yaml:"tui"`
}

// MailboxConfig controls the shared-memory regions
type MailboxConfig struct {
	// Capacity is the size of each region in bytes, length header included
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
	// Dir is where regions and doorbells are created (default: /dev/shm when present)
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// EngineConfig controls the engine process
type EngineConfig struct {
	// PollIntervalMs is the fallback wait between empty polls
	PollIntervalMs int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// FrontendConfig controls the front-end poll loop
type FrontendConfig struct {
	// PollIntervalMs is the fallback wait between empty polls
	PollIntervalMs int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// DoorbellConfig controls wake-up notifications between the processes
type DoorbellConfig struct {
	// Enabled turns on doorbell files; when false both loops only poll
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logs are written at all
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the minimum log level: debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
	// Dir holds engine.log and frontend.log
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the size at which a log file is rotated
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is the color theme: "default", "monokai", "nord"
	Theme string `mapstructure:"theme" yaml:"theme"`
	// LineNumbers shows a line-number gutter
	LineNumbers bool `mapstructure:"line_numbers" yaml:"line_numbers"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Mailbox: MailboxConfig{
			Capacity: 4096,
			Dir:      DefaultMailboxDir(),
		},
		Engine: EngineConfig{
			PollIntervalMs: 10,
		},
		Frontend: FrontendConfig{
			PollIntervalMs: 1,
		},
		Doorbell: DoorbellConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        DefaultLogDir(),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		TUI: TUIConfig{
			Theme:       "default",
			LineNumbers: true,
		},
	}
}

// PollInterval returns the engine fallback wait as a time.Duration
func (c *EngineConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// PollInterval returns the front-end fallback wait as a time.Duration
func (c *FrontendConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("mailbox.capacity", defaults.Mailbox.Capacity)
	viper.SetDefault("mailbox.dir", defaults.Mailbox.Dir)

	viper.SetDefault("engine.poll_interval_ms", defaults.Engine.PollIntervalMs)
	viper.SetDefault("frontend.poll_interval_ms", defaults.Frontend.PollIntervalMs)

	viper.SetDefault("doorbell.enabled", defaults.Doorbell.Enabled)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.line_numbers", defaults.TUI.LineNumbers)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// DefaultMailboxDir returns /dev/shm when it exists, the system temp
// directory otherwise.
func DefaultMailboxDir() string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// DefaultLogDir returns $XDG_STATE_HOME/firefly/logs, falling back to
// ~/.local/state/firefly/logs.
func DefaultLogDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "firefly", "logs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "firefly", "logs")
	}
	return filepath.Join(home, ".local", "state", "firefly", "logs")
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "firefly")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".firefly"
	}
	return filepath.Join(home, ".config", "firefly")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
