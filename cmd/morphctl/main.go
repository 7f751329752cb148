package main

import (
	"flag"
	"image"
	"image/draw"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/imageset"
	"github.com/deepsix-ml/deepsix/internal/logging"
	"github.com/deepsix-ml/deepsix/internal/synth"
)

func main() {
	logging.Init("morphctl")
	configPath := flag.String("config", "", "path to morphctl config.toml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load morph config")
	}

	manager, err := imageset.Open(cfg.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open image set")
	}

	if cfg.Resize > 0 {
		stats, err := manager.ResizeRaws(cfg.Resize)
		if err != nil {
			log.Fatal().Err(err).Msg("resize failed")
		}
		log.Info().Int("new", stats.New).Int("old", stats.Old).Int("skipped", stats.Skipped).
			Int("size", cfg.Resize).Msg("raws resized")
	}

	if cfg.Annotate {
		gen, err := synth.New(cfg.Resize, cfg.Square, cfg.Seed)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid annotation settings")
		}
		alter := func(img image.Image) image.Image {
			rgba := image.NewRGBA(img.Bounds())
			draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
			gen.Annotate(rgba)
			return rgba
		}
		stats, err := manager.MakeVersions(cfg.VersionKey, alter, false)
		if err != nil {
			log.Fatal().Err(err).Msg("annotation failed")
		}
		log.Info().Int("new", stats.New).Int("old", stats.Old).Int("skipped", stats.Skipped).
			Str("key", cfg.VersionKey).Msg("versions created")
	}

	if err := manager.Save(); err != nil {
		log.Fatal().Err(err).Msg("failed to save catalog")
	}
}
