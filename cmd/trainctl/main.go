package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/experiment"
	"github.com/deepsix-ml/deepsix/internal/logging"
)

func main() {
	logging.Init("trainctl")
	configPath := flag.String("config", "", "path to trainctl config.toml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load train config")
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up experiment")
	}
	defer exp.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := exp.Train(ctx); err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	if err := exp.Save(); err != nil {
		log.Fatal().Err(err).Msg("failed to save experiment")
	}
	log.Info().Str("dir", cfg.OutDir).Str("run_id", exp.Report.RunID).Msg("experiment saved")
}
