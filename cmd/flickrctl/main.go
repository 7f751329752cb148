package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/collect/flickr"
	"github.com/deepsix-ml/deepsix/internal/imageset"
	"github.com/deepsix-ml/deepsix/internal/logging"
)

func main() {
	logging.Init("flickrctl")
	configPath := flag.String("config", "", "path to flickrctl config.toml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load flickr config")
	}

	key, secret, err := flickr.LoadKeyFile(cfg.KeyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load api keys")
	}
	client := flickr.NewClient(key, secret)

	manager, err := imageset.Open(cfg.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open image set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, tag := range cfg.Tags {
		log.Info().Str("tag", tag).Msg("finding tagged images")
		resources, err := client.Search(ctx, tag, cfg.MaxPerTag)
		if err != nil {
			log.Fatal().Err(err).Str("tag", tag).Msg("flickr search failed")
		}
		added := manager.AddAll(resources)
		log.Info().Str("tag", tag).Int("found", len(resources)).Int("added", added).Msg("resources collected")
	}

	stats, err := manager.DownloadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("download failed")
	}
	log.Info().Int("new", stats.New).Int("old", stats.Old).Int("invalid", stats.Invalid).Msg("download complete")

	if err := manager.Save(); err != nil {
		log.Fatal().Err(err).Msg("failed to save catalog")
	}
}
