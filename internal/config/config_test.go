package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hush/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "hush")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Output.BitRate != 192000 {
		t.Fatalf("unexpected default bit rate: %d", cfg.Output.BitRate)
	}
	if cfg.Output.Channels != 2 {
		t.Fatalf("unexpected default channels: %d", cfg.Output.Channels)
	}
	if !cfg.Denoise.Enabled {
		t.Fatal("expected denoise enabled by default")
	}
	if cfg.Denoise.SuppressionDB != -10 {
		t.Fatalf("unexpected default suppression: %d", cfg.Denoise.SuppressionDB)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		if _, statErr := os.Stat(dir); statErr != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, statErr)
		}
	}
}

func TestLoadParsesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		"[output]",
		"bit_rate = 128000",
		"channels = 1",
		"",
		"[denoise]",
		"enabled = false",
		"suppression_db = -30",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Output.BitRate != 128000 {
		t.Fatalf("unexpected bit rate: %d", cfg.Output.BitRate)
	}
	if cfg.Output.Channels != 1 {
		t.Fatalf("unexpected channels: %d", cfg.Output.Channels)
	}
	if cfg.Denoise.Enabled {
		t.Fatal("expected denoise disabled")
	}
	if cfg.Denoise.SuppressionDB != -30 {
		t.Fatalf("unexpected suppression: %d", cfg.Denoise.SuppressionDB)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bit rate too low", func(c *config.Config) { c.Output.BitRate = 4000 }},
		{"bit rate too high", func(c *config.Config) { c.Output.BitRate = 512000 }},
		{"channels out of range", func(c *config.Config) { c.Output.Channels = 6 }},
		{"suppression positive", func(c *config.Config) { c.Denoise.SuppressionDB = 10 }},
		{"suppression too deep", func(c *config.Config) { c.Denoise.SuppressionDB = -120 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "fancy" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "trace" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Format = "console"
			cfg.Logging.Level = "info"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Output.BitRate != config.Default().Output.BitRate {
		t.Fatalf("sample bit rate differs from default: %d", cfg.Output.BitRate)
	}
}
