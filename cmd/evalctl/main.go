package main

import (
	"context"
	"flag"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/experiment"
	"github.com/deepsix-ml/deepsix/internal/logging"
)

type evalReport struct {
	Parameters    string  `json:"parameters"`
	DataDir       string  `json:"data_directory"`
	Network       string  `json:"network"`
	TestLoss      float64 `json:"test_loss"`
	TestAccuracy  float64 `json:"test_accuracy"`
	TestPrecision float64 `json:"test_precision"`
	TestRecall    float64 `json:"test_recall"`
	Confusion     [][]int `json:"confusion"`
}

func main() {
	logging.Init("evalctl")
	configPath := flag.String("config", "", "path to evalctl config.toml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load eval config")
	}

	// Dropout stays zero here: evaluation wants the deterministic network.
	exp, err := experiment.New(experiment.Config{
		DataDir:   cfg.DataDir,
		OutDir:    cfg.ExperimentDir,
		Network:   cfg.Network,
		Classes:   cfg.Classes,
		BatchSize: cfg.BatchSize,
		Seed:      cfg.Seed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up experiment")
	}
	defer exp.Close()

	paramsPath := filepath.Join(cfg.ExperimentDir, experiment.ParametersName)
	if err := exp.LoadParameters(paramsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to load learned parameters")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conf, err := exp.Test(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	report := evalReport{
		Parameters:    paramsPath,
		DataDir:       cfg.DataDir,
		Network:       exp.Report.Network,
		TestLoss:      exp.Report.TestLoss,
		TestAccuracy:  exp.Report.TestAccuracy,
		TestPrecision: exp.Report.TestPrecision,
		TestRecall:    exp.Report.TestRecall,
		Confusion:     conf.Matrix(),
	}
	out := filepath.Join(cfg.ExperimentDir, "evaluation.json")
	if err := experiment.WriteReport(out, report); err != nil {
		log.Fatal().Err(err).Msg("failed to write evaluation report")
	}
	log.Info().Str("path", out).Msg("evaluation saved")
}
