package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/deepsix-ml/deepsix/internal/experiment"
)

type fileConfig struct {
	DataDir   string  `toml:"data_dir"`
	OutDir    string  `toml:"out_dir"`
	Network   string  `toml:"network"`
	Classes   int     `toml:"classes"`
	Epochs    int     `toml:"epochs"`
	BatchSize int     `toml:"batch_size"`
	LearnRate float64 `toml:"learning_rate"`
	Momentum  float64 `toml:"momentum"`
	Dropout   float64 `toml:"dropout"`
	Seed      int64   `toml:"seed"`
}

func loadConfig(path string) (experiment.Config, error) {
	cfg := experiment.Config{Dropout: experiment.DefaultDropout, Seed: 1}
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return experiment.Config{}, fmt.Errorf("load train config: %w", err)
		}
		if meta.IsDefined("data_dir") {
			cfg.DataDir = strings.TrimSpace(raw.DataDir)
		}
		if meta.IsDefined("out_dir") {
			cfg.OutDir = strings.TrimSpace(raw.OutDir)
		}
		if meta.IsDefined("network") {
			cfg.Network = strings.TrimSpace(raw.Network)
		}
		if meta.IsDefined("classes") {
			cfg.Classes = raw.Classes
		}
		if meta.IsDefined("epochs") {
			cfg.Epochs = raw.Epochs
		}
		if meta.IsDefined("batch_size") {
			cfg.BatchSize = raw.BatchSize
		}
		if meta.IsDefined("learning_rate") {
			cfg.LearnRate = raw.LearnRate
		}
		if meta.IsDefined("momentum") {
			cfg.Momentum = raw.Momentum
		}
		if meta.IsDefined("dropout") {
			cfg.Dropout = raw.Dropout
		}
		if meta.IsDefined("seed") {
			cfg.Seed = raw.Seed
		}
	}
	if err := cfg.Validate(); err != nil {
		return experiment.Config{}, err
	}
	return cfg, nil
}
