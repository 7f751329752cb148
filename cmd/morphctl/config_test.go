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

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
dir = "images/flickr"
resize = 32
version_key = "boxed"
annotate = false
square = 8
seed = 5
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Dir != "images/flickr" || cfg.Resize != 32 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.VersionKey != "boxed" || cfg.Annotate || cfg.Square != 8 || cfg.Seed != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `dir = "images/flickr"`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Resize != 64 || cfg.VersionKey != "square" || !cfg.Annotate {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Square != 16 || cfg.Seed != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigRequiresDir(t *testing.T) {
	if _, err := loadConfig(writeConfig(t, `resize = 32`)); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestLoadConfigRejectsOversizedSquare(t *testing.T) {
	path := writeConfig(t, "dir = \"images/flickr\"\nresize = 16\nsquare = 16\n")
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for square not fitting resized images")
	}
}
