package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/deepsix-ml/deepsix/internal/synth"
)

type synthConfig struct {
	BlackDir string
	SolidDir string
	Count    int
	Size     int
	Square   int
	Seed     int64
}

type fileConfig struct {
	BlackDir string `toml:"black_dir"`
	SolidDir string `toml:"solid_dir"`
	Count    int    `toml:"count"`
	Size     int    `toml:"size"`
	Square   int    `toml:"square"`
	Seed     int64  `toml:"seed"`
}

func defaultConfig() synthConfig {
	return synthConfig{
		BlackDir: filepath.Join("images", "black"),
		SolidDir: filepath.Join("images", "solid"),
		Count:    1000,
		Size:     synth.DefaultSize,
		Square:   synth.DefaultSquare,
		Seed:     1,
	}
}

func loadConfig(path string) (synthConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return synthConfig{}, fmt.Errorf("load synth config: %w", err)
	}
	if meta.IsDefined("black_dir") && strings.TrimSpace(raw.BlackDir) != "" {
		cfg.BlackDir = raw.BlackDir
	}
	if meta.IsDefined("solid_dir") && strings.TrimSpace(raw.SolidDir) != "" {
		cfg.SolidDir = raw.SolidDir
	}
	if meta.IsDefined("count") {
		cfg.Count = raw.Count
	}
	if meta.IsDefined("size") {
		cfg.Size = raw.Size
	}
	if meta.IsDefined("square") {
		cfg.Square = raw.Square
	}
	if meta.IsDefined("seed") {
		cfg.Seed = raw.Seed
	}
	if cfg.Count <= 0 {
		return synthConfig{}, fmt.Errorf("synth config: count must be positive")
	}
	return cfg, nil
}
