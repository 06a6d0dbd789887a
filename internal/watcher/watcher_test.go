package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"axd/internal/config"
)

func TestReloadInvokesOnReloadWithNewConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan *config.Config, 1)
	w, err := New(path, func(cfg *config.Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.LogLevel != "debug" {
			t.Errorf("reloaded LogLevel = %q, want debug", cfg.LogLevel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onReload was not invoked after the config file changed")
	}
}

func TestReloadIgnoresUnrelatedFilesInTheSameDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan *config.Config, 1)
	w, err := New(path, func(cfg *config.Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("noise"), 0o644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}

	select {
	case <-reloaded:
		t.Fatal("onReload fired for a write to an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
