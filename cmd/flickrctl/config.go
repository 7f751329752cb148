package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type flickrConfig struct {
	KeyFile   string
	Dir       string
	Tags      []string
	MaxPerTag int
}

type fileConfig struct {
	KeyFile   string   `toml:"key_file"`
	Dir       string   `toml:"dir"`
	Tags      []string `toml:"tags"`
	MaxPerTag int      `toml:"max_per_tag"`
}

func defaultConfig() flickrConfig {
	return flickrConfig{
		KeyFile:   "api_flickr.txt",
		Dir:       filepath.Join("images", "flickr"),
		MaxPerTag: 5000,
	}
}

func loadConfig(path string) (flickrConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return flickrConfig{}, fmt.Errorf("load flickr config: %w", err)
	}
	if meta.IsDefined("key_file") && strings.TrimSpace(raw.KeyFile) != "" {
		cfg.KeyFile = raw.KeyFile
	}
	if meta.IsDefined("dir") && strings.TrimSpace(raw.Dir) != "" {
		cfg.Dir = raw.Dir
	}
	if meta.IsDefined("tags") {
		cfg.Tags = normalizeTags(raw.Tags)
	}
	if meta.IsDefined("max_per_tag") {
		cfg.MaxPerTag = raw.MaxPerTag
	}
	if len(cfg.Tags) == 0 {
		return flickrConfig{}, fmt.Errorf("flickr config: at least one tag required")
	}
	if cfg.MaxPerTag <= 0 {
		return flickrConfig{}, fmt.Errorf("flickr config: max_per_tag must be positive")
	}
	return cfg, nil
}

func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tag := range in {
		v := strings.TrimSpace(tag)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
