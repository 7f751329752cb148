package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/logging"
	"github.com/deepsix-ml/deepsix/internal/synth"
)

func main() {
	logging.Init("synthctl")
	configPath := flag.String("config", "", "path to synthctl config.toml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load synth config")
	}

	gen, err := synth.New(cfg.Size, cfg.Square, cfg.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid generator settings")
	}

	log.Info().Str("dir", cfg.BlackDir).Msg("creating black images")
	if err := gen.WriteCorpus(cfg.BlackDir, 1, cfg.Count, false); err != nil {
		log.Fatal().Err(err).Msg("black corpus failed")
	}
	log.Info().Str("dir", cfg.SolidDir).Msg("creating solid colour images")
	if err := gen.WriteCorpus(cfg.SolidDir, cfg.Count+1, cfg.Count, true); err != nil {
		log.Fatal().Err(err).Msg("solid corpus failed")
	}
}
