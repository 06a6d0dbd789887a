package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 7676 {
		t.Errorf("Port = %d, want 7676", cfg.Port)
	}
	if cfg.DefaultWaitTimeoutMs != 5000 || cfg.DefaultPollIntervalMs != 100 {
		t.Errorf("wait defaults = (%d, %d), want (5000, 100)", cfg.DefaultWaitTimeoutMs, cfg.DefaultPollIntervalMs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should validate cleanly: %v", err)
	}
}

func TestLoadNonexistentPathReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != DefaultConfig().Port {
		t.Errorf("Load of a missing file should return defaults, got port %d", cfg.Port)
	}
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "port = 9090\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090 (overlaid)", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug (overlaid)", cfg.LogLevel)
	}
	if cfg.Host != DefaultConfig().Host {
		t.Errorf("Host = %q, want default to survive a partial overlay", cfg.Host)
	}
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a port above 65535")
	}
}

func TestValidateRejectsOutOfRangeWaitBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultWaitTimeoutMs = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a zero default_wait_timeout_ms")
	}

	cfg = DefaultConfig()
	cfg.DefaultPollIntervalMs = 10000
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a poll interval above 5000ms")
	}
}

func TestValidateRejectsNonPositiveBodyCaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BodySizeCapBytes = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a zero body_size_cap_bytes")
	}
}
