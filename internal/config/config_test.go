package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("default resolution = %dx%d, want 1280x720", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("vsync should default to on")
	}
	if cfg.Assets.Dir != "assets" {
		t.Errorf("asset dir = %q, want assets", cfg.Assets.Dir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
graphics:
  width: 1920
  fullscreen: true
assets:
  dir: /opt/models
  default_model: robot.glb
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("width = %d, want 1920", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("fullscreen not applied")
	}
	// Untouched values keep their defaults.
	if cfg.Graphics.Height != 720 {
		t.Errorf("height = %d, want default 720", cfg.Graphics.Height)
	}
	if cfg.Assets.Dir != "/opt/models" || cfg.Assets.DefaultModel != "robot.glb" {
		t.Errorf("assets = %+v", cfg.Assets)
	}
}

func TestLoadFromFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("graphics: [not a map"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := loadFromFile(Default(), path); err == nil {
		t.Fatal("loadFromFile accepted malformed YAML")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Graphics.Width = 800
	cfg.Audio.Muted = true
	cfg.Assets.DefaultModel = "ship.glb"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Graphics.Width != 800 || !loaded.Audio.Muted || loaded.Assets.DefaultModel != "ship.glb" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestConfigDirNotEmpty(t *testing.T) {
	if ConfigDir() == "" {
		t.Fatal("ConfigDir returned empty path")
	}
}
