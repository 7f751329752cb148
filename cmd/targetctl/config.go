package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type targetConfig struct {
	SKUFile string
	Dir     string
	Width   int
	Max     int
}

type fileConfig struct {
	SKUFile string `toml:"sku_file"`
	Dir     string `toml:"dir"`
	Width   int    `toml:"width"`
	Max     int    `toml:"max"`
}

func defaultConfig() targetConfig {
	return targetConfig{
		SKUFile: "api_target_skus.txt",
		Dir:     filepath.Join("images", "target"),
		Width:   64,
		Max:     10000,
	}
}

func loadConfig(path string) (targetConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return targetConfig{}, fmt.Errorf("load target config: %w", err)
	}
	if meta.IsDefined("sku_file") && strings.TrimSpace(raw.SKUFile) != "" {
		cfg.SKUFile = raw.SKUFile
	}
	if meta.IsDefined("dir") && strings.TrimSpace(raw.Dir) != "" {
		cfg.Dir = raw.Dir
	}
	if meta.IsDefined("width") {
		cfg.Width = raw.Width
	}
	if meta.IsDefined("max") {
		cfg.Max = raw.Max
	}
	if cfg.Width <= 0 {
		return targetConfig{}, fmt.Errorf("target config: width must be positive")
	}
	return cfg, nil
}
