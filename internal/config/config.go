// Package config handles configuration loading and validation for axd.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds axd's tunables. Everything here is a developer-facing default;
// none of it is the operational state the server is forbidden from
// persisting across restarts (no TargetApp, no element path, no session).
type Config struct {
	// Host and Port are the default bind address for the `run` flow. Port 0
	// means "pick a free ephemeral port".
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// LogFormat is "console" or "json".
	LogFormat string `toml:"log_format"`
	// LogPath is the rotated log file path. Empty disables file logging.
	LogPath string `toml:"log_path"`

	LogMaxSizeMB   int  `toml:"log_max_size_mb"`
	LogMaxAgeDays  int  `toml:"log_max_age_days"`
	LogMaxBackups  int  `toml:"log_max_backups"`
	LogCompress    bool `toml:"log_compress"`

	// BodySizeCapBytes is the default request body cap; TypeBodySizeCapBytes
	// overrides it for /type, which carries larger text payloads.
	BodySizeCapBytes     int64 `toml:"body_size_cap_bytes"`
	TypeBodySizeCapBytes int64 `toml:"type_body_size_cap_bytes"`

	// DefaultWaitTimeoutMs and DefaultPollIntervalMs seed /wait when the
	// caller omits them.
	DefaultWaitTimeoutMs  int `toml:"default_wait_timeout_ms"`
	DefaultPollIntervalMs int `toml:"default_poll_interval_ms"`

	// WatchdogPollIntervalMs controls how often the lifecycle coordinator
	// checks the target app's liveness on platforms without kqueue, and on
	// every platform how often /status's watchdog_last_ok is refreshed.
	WatchdogPollIntervalMs int `toml:"watchdog_poll_interval_ms"`
}

// DefaultConfig returns axd's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:      "127.0.0.1",
		Port:      7676,
		LogLevel:  "info",
		LogFormat: "console",
		LogPath:   defaultLogPath(),

		LogMaxSizeMB:  20,
		LogMaxAgeDays: 14,
		LogMaxBackups: 5,
		LogCompress:   true,

		BodySizeCapBytes:     10 * 1024,
		TypeBodySizeCapBytes: 100 * 1024,

		DefaultWaitTimeoutMs:  5000,
		DefaultPollIntervalMs: 100,

		WatchdogPollIntervalMs: 1000,
	}
}

func defaultLogPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, "Library", "Logs", "axd", "axd.log")
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "axd", "config.toml")
}

// Load reads configuration from path, overlaying it onto the defaults. If the
// file doesn't exist, the defaults are returned unchanged (the config file is
// entirely optional).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for internally-inconsistent values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("config: port must be in [0, 65535]")
	}
	if c.DefaultWaitTimeoutMs < 1 || c.DefaultWaitTimeoutMs > 60000 {
		return errors.New("config: default_wait_timeout_ms must be in [1, 60000]")
	}
	if c.DefaultPollIntervalMs < 1 || c.DefaultPollIntervalMs > 5000 {
		return errors.New("config: default_poll_interval_ms must be in [1, 5000]")
	}
	if c.BodySizeCapBytes <= 0 || c.TypeBodySizeCapBytes <= 0 {
		return errors.New("config: body size caps must be positive")
	}
	return nil
}
