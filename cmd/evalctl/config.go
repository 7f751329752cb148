package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type evalConfig struct {
	DataDir       string
	ExperimentDir string
	Network       string
	Classes       int
	BatchSize     int
	Seed          int64
}

type fileConfig struct {
	DataDir       string `toml:"data_dir"`
	ExperimentDir string `toml:"experiment_dir"`
	Network       string `toml:"network"`
	Classes       int    `toml:"classes"`
	BatchSize     int    `toml:"batch_size"`
	Seed          int64  `toml:"seed"`
}

func loadConfig(path string) (evalConfig, error) {
	cfg := evalConfig{Seed: 1}
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return evalConfig{}, fmt.Errorf("load eval config: %w", err)
		}
		if meta.IsDefined("data_dir") {
			cfg.DataDir = strings.TrimSpace(raw.DataDir)
		}
		if meta.IsDefined("experiment_dir") {
			cfg.ExperimentDir = strings.TrimSpace(raw.ExperimentDir)
		}
		if meta.IsDefined("network") {
			cfg.Network = strings.TrimSpace(raw.Network)
		}
		if meta.IsDefined("classes") {
			cfg.Classes = raw.Classes
		}
		if meta.IsDefined("batch_size") {
			cfg.BatchSize = raw.BatchSize
		}
		if meta.IsDefined("seed") {
			cfg.Seed = raw.Seed
		}
	}
	if cfg.DataDir == "" {
		return evalConfig{}, fmt.Errorf("eval config: data_dir is required")
	}
	if cfg.ExperimentDir == "" {
		return evalConfig{}, fmt.Errorf("eval config: experiment_dir is required")
	}
	return cfg, nil
}
