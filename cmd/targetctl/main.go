package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/collect/target"
	"github.com/deepsix-ml/deepsix/internal/imageset"
	"github.com/deepsix-ml/deepsix/internal/logging"
)

func main() {
	logging.Init("targetctl")
	configPath := flag.String("config", "", "path to targetctl config.toml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load target config")
	}

	resources, err := target.FromSKUFile(cfg.SKUFile, cfg.Width, cfg.Max)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read sku file")
	}

	manager, err := imageset.Open(cfg.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open image set")
	}
	added := manager.AddAll(resources)
	log.Info().Int("found", len(resources)).Int("added", added).Msg("resources collected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := manager.DownloadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("download failed")
	}
	log.Info().Int("new", stats.New).Int("old", stats.Old).Int("invalid", stats.Invalid).Msg("download complete")

	if err := manager.Save(); err != nil {
		log.Fatal().Err(err).Msg("failed to save catalog")
	}
}
