package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/deepsix-ml/deepsix/internal/synth"
)

type morphConfig struct {
	Dir        string
	Resize     int
	VersionKey string
	Annotate   bool
	Square     int
	Seed       int64
}

type fileConfig struct {
	Dir        string `toml:"dir"`
	Resize     int    `toml:"resize"`
	VersionKey string `toml:"version_key"`
	Annotate   bool   `toml:"annotate"`
	Square     int    `toml:"square"`
	Seed       int64  `toml:"seed"`
}

func defaultConfig() morphConfig {
	return morphConfig{
		Resize:     synth.DefaultSize,
		VersionKey: "square",
		Annotate:   true,
		Square:     synth.DefaultSquare,
		Seed:       1,
	}
}

func loadConfig(path string) (morphConfig, error) {
	cfg := defaultConfig()
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return morphConfig{}, fmt.Errorf("load morph config: %w", err)
		}
		if meta.IsDefined("dir") {
			cfg.Dir = strings.TrimSpace(raw.Dir)
		}
		if meta.IsDefined("resize") {
			cfg.Resize = raw.Resize
		}
		if meta.IsDefined("version_key") && strings.TrimSpace(raw.VersionKey) != "" {
			cfg.VersionKey = raw.VersionKey
		}
		if meta.IsDefined("annotate") {
			cfg.Annotate = raw.Annotate
		}
		if meta.IsDefined("square") {
			cfg.Square = raw.Square
		}
		if meta.IsDefined("seed") {
			cfg.Seed = raw.Seed
		}
	}
	if cfg.Dir == "" {
		return morphConfig{}, fmt.Errorf("morph config: dir is required")
	}
	if cfg.Annotate && cfg.Resize > 0 && cfg.Square >= cfg.Resize {
		return morphConfig{}, fmt.Errorf("morph config: square %d does not fit resized %dx%d images",
			cfg.Square, cfg.Resize, cfg.Resize)
	}
	return cfg, nil
}
