package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/dataset"
	"github.com/deepsix-ml/deepsix/internal/logging"
)

func main() {
	logging.Init("datactl")
	configPath := flag.String("config", "", "path to datactl config.toml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load data config")
	}

	set, err := dataset.Build(cfg.OutDir, cfg.Sources, cfg.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to assemble dataset")
	}
	set.Compress = cfg.Compress
	log.Info().Msg(set.Summary())

	if err := set.LoadImages(); err != nil {
		log.Fatal().Err(err).Msg("failed to load image data")
	}
	if err := set.Save(); err != nil {
		log.Fatal().Err(err).Msg("failed to save dataset")
	}
	log.Info().Str("dir", cfg.OutDir).Msg("dataset saved")
}
