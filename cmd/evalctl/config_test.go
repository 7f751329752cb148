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
data_dir = "datasets/run1"
experiment_dir = "experiments/run1"
network = "cnn"
classes = 2
batch_size = 50
seed = 3
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataDir != "datasets/run1" || cfg.ExperimentDir != "experiments/run1" {
		t.Fatalf("unexpected directories: %+v", cfg)
	}
	if cfg.Network != "cnn" || cfg.Classes != 2 || cfg.BatchSize != 50 || cfg.Seed != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir = "datasets/run1"
experiment_dir = "experiments/run1"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Network != "" || cfg.Classes != 0 || cfg.BatchSize != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Seed != 1 {
		t.Fatalf("unexpected default seed: %d", cfg.Seed)
	}
}

func TestLoadConfigRequiresDirectories(t *testing.T) {
	if _, err := loadConfig(writeConfig(t, `experiment_dir = "experiments/run1"`)); err == nil {
		t.Fatalf("expected error for missing data_dir")
	}
	if _, err := loadConfig(writeConfig(t, `data_dir = "datasets/run1"`)); err == nil {
		t.Fatalf("expected error for missing experiment_dir")
	}
}
