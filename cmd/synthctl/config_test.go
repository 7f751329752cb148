package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BlackDir != filepath.Join("images", "black") || cfg.SolidDir != filepath.Join("images", "solid") {
		t.Fatalf("unexpected default dirs: %+v", cfg)
	}
	if cfg.Count != 1000 || cfg.Size != 64 || cfg.Square != 16 || cfg.Seed != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
black_dir = "out/black"
count = 50
size = 32
square = 8
seed = 9
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BlackDir != "out/black" {
		t.Fatalf("unexpected black dir: %q", cfg.BlackDir)
	}
	// undefined keys keep their defaults
	if cfg.SolidDir != filepath.Join("images", "solid") {
		t.Fatalf("unexpected solid dir: %q", cfg.SolidDir)
	}
	if cfg.Count != 50 || cfg.Size != 32 || cfg.Square != 8 || cfg.Seed != 9 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadConfigRejectsZeroCount(t *testing.T) {
	path := writeConfig(t, `count = 0`)
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for zero count")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
