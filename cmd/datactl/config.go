package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type dataConfig struct {
	OutDir   string
	Sources  []string
	Seed     int64
	Compress bool
}

type fileConfig struct {
	OutDir   string   `toml:"out_dir"`
	Sources  []string `toml:"sources"`
	Seed     int64    `toml:"seed"`
	Compress bool     `toml:"compress"`
}

func loadConfig(path string) (dataConfig, error) {
	var cfg dataConfig
	cfg.Seed = 1
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return dataConfig{}, fmt.Errorf("load data config: %w", err)
		}
		if meta.IsDefined("out_dir") {
			cfg.OutDir = strings.TrimSpace(raw.OutDir)
		}
		if meta.IsDefined("sources") {
			cfg.Sources = normalizeSources(raw.Sources)
		}
		if meta.IsDefined("seed") {
			cfg.Seed = raw.Seed
		}
		if meta.IsDefined("compress") {
			cfg.Compress = raw.Compress
		}
	}
	if cfg.OutDir == "" {
		return dataConfig{}, fmt.Errorf("data config: out_dir is required")
	}
	if len(cfg.Sources) == 0 {
		return dataConfig{}, fmt.Errorf("data config: at least one source is required")
	}
	return cfg, nil
}

func normalizeSources(in []string) []string {
	out := make([]string, 0, len(in))
	for _, source := range in {
		v := strings.TrimSpace(source)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
