package logging

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"

	"axd/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"DEBUG", zapcore.DebugLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"bogus", zapcore.InfoLevel, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q): expected error, got none", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewBuildsAWorkingLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogPath = "" // skip the file core; no rotating log file for this test
	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer logger.Sync()

	logger.Info("hello")
}

func TestSetLevelReloadsInPlace(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogPath = ""
	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer logger.Sync()

	if err := logger.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug): %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled after SetLevel(debug)")
	}

	if err := logger.SetLevel("bogus"); err == nil {
		t.Error("SetLevel(bogus) should error and leave the level unchanged")
	}
}

func TestRequestIDRoundTripsThroughContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %q, want req-123", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext(bare ctx) = %q, want empty", got)
	}
}
