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
	if cfg.SKUFile != "api_target_skus.txt" || cfg.Dir != filepath.Join("images", "target") {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Width != 64 || cfg.Max != 10000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
sku_file = "skus.txt"
dir = "images/shoes"
width = 128
max = 500
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SKUFile != "skus.txt" || cfg.Dir != "images/shoes" {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if cfg.Width != 128 || cfg.Max != 500 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadConfigRejectsZeroWidth(t *testing.T) {
	path := writeConfig(t, `width = 0`)
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for zero width")
	}
}
