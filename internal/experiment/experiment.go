// Package experiment trains and evaluates image classifiers over assembled
// datasets. The numerical work (autodiff, convolution, solvers) is
// delegated to gorgonia; this package shapes data, drives the epoch loop,
// accumulates metrics, and persists reports.
package experiment

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/cpuid/v2"
	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/dataset"
)

// Config describes one training run.
type Config struct {
	DataDir   string
	OutDir    string
	Network   string // "mlp" or "cnn"
	Classes   int    // 0: inferred from the labels
	Epochs    int    // 0: DefaultEpochs
	BatchSize int    // 0: DefaultBatchSize
	LearnRate float64
	Momentum  float64
	Dropout   float64
	Seed      int64
}

// Defaults mirror the historical experiment setup.
const (
	DefaultEpochs    = 10
	DefaultBatchSize = 100
	DefaultLearnRate = 0.001
	DefaultMomentum  = 0.1
	DefaultDropout   = 0.5
)

func (c Config) withDefaults() Config {
	if c.Network == "" {
		c.Network = NetworkMLP
	}
	if c.Epochs == 0 {
		c.Epochs = DefaultEpochs
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.LearnRate == 0 {
		c.LearnRate = DefaultLearnRate
	}
	if c.Momentum == 0 {
		c.Momentum = DefaultMomentum
	}
	return c
}

// Validate rejects configurations the run loop cannot honor.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("experiment: data directory required")
	}
	if c.OutDir == "" {
		return fmt.Errorf("experiment: output directory required")
	}
	if c.Network != "" && c.Network != NetworkMLP && c.Network != NetworkCNN {
		return fmt.Errorf("experiment: unknown network %q", c.Network)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("experiment: epochs must not be negative")
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("experiment: batch size must not be negative")
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("experiment: dropout must be in [0,1)")
	}
	return nil
}

// Report is the experiment record persisted as experiment.json.
type Report struct {
	RunID            string  `json:"run_id"`
	Network          string  `json:"network"`
	LossFunction     string  `json:"loss_function"`
	LearnRate        float64 `json:"learning_rate"`
	Momentum         float64 `json:"learning_momentum"`
	Dropout          float64 `json:"dropout"`
	BatchSize        int     `json:"batch_size"`
	Epochs           int     `json:"epochs"`
	Seed             int64   `json:"seed"`
	DataDir          string  `json:"data_directory"`
	ImagesTraining   int     `json:"images_training"`
	ImagesValidation int     `json:"images_validation"`
	ImagesTesting    int     `json:"images_testing"`
	CPU              string  `json:"cpu"`
	CPUCores         int     `json:"cpu_cores"`
	CompileSeconds   float64 `json:"time_to_compile"`
	SecondsPerEpoch  float64 `json:"time_per_epoch"`
	TestLoss         float64 `json:"test_loss"`
	TestAccuracy     float64 `json:"test_accuracy"`
	TestPrecision    float64 `json:"test_precision"`
	TestRecall       float64 `json:"test_recall"`
}

// EpochRow is one line of the training history.
type EpochRow struct {
	Epoch     int
	TrainLoss float64
	TrainAcc  float64
	ValLoss   float64
	ValAcc    float64
}

// Experiment binds compiled models to the three dataset splits. With
// dropout enabled, eval is a second dropout-free graph so validation and
// test passes run the deterministic network; otherwise eval is model.
type Experiment struct {
	cfg     Config
	model   *model
	eval    *model
	rng     *rand.Rand
	Report  Report
	History []EpochRow

	training   *dataset.Arrays
	validation *dataset.Arrays
	testing    *dataset.Arrays
}

// New loads the dataset splits from cfg.DataDir and compiles the model.
// The batch size is clamped to the smallest non-empty split so one graph
// serves all three passes.
func New(cfg Config) (*Experiment, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("experiment dir (%s): %w", cfg.OutDir, err)
	}

	e := &Experiment{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
	var err error
	log.Info().Str("dir", cfg.DataDir).Msg("loading data")
	if e.training, err = dataset.LoadArrays(cfg.DataDir, dataset.PartTraining); err != nil {
		return nil, err
	}
	if e.validation, err = dataset.LoadArrays(cfg.DataDir, dataset.PartValidation); err != nil {
		return nil, err
	}
	if e.testing, err = dataset.LoadArrays(cfg.DataDir, dataset.PartTesting); err != nil {
		return nil, err
	}
	if e.training.Count() == 0 {
		return nil, fmt.Errorf("experiment: empty training split in %s", cfg.DataDir)
	}
	if len(e.training.Shape) != 4 {
		return nil, fmt.Errorf("experiment: training arrays are %d-dimensional, want 4", len(e.training.Shape))
	}

	if cfg.Classes == 0 {
		cfg.Classes = inferClasses(e.training, e.validation, e.testing)
		e.cfg.Classes = cfg.Classes
	}
	batch := clampBatch(cfg.BatchSize, e.training.Count())
	for _, split := range []*dataset.Arrays{e.validation, e.testing} {
		if split.Count() > 0 {
			batch = clampBatch(batch, split.Count())
		}
	}
	e.cfg.BatchSize = batch

	shape := [3]int{e.training.Shape[1], e.training.Shape[2], e.training.Shape[3]}
	log.Info().Str("network", cfg.Network).Ints("shape", e.training.Shape[1:]).
		Int("classes", cfg.Classes).Int("batch", batch).Msg("compiling model")
	start := time.Now()
	if e.model, err = compile(e.cfg, shape, batch); err != nil {
		return nil, err
	}
	e.eval = e.model
	if cfg.Dropout > 0 {
		evalCfg := e.cfg
		evalCfg.Dropout = 0
		if e.eval, err = compile(evalCfg, shape, batch); err != nil {
			e.model.Close()
			return nil, err
		}
	}

	e.Report = Report{
		RunID:            uuid.NewString(),
		Network:          cfg.Network,
		LossFunction:     "categorical_crossentropy",
		LearnRate:        cfg.LearnRate,
		Momentum:         cfg.Momentum,
		Dropout:          cfg.Dropout,
		BatchSize:        batch,
		Seed:             cfg.Seed,
		DataDir:          cfg.DataDir,
		ImagesTraining:   e.training.Count(),
		ImagesValidation: e.validation.Count(),
		ImagesTesting:    e.testing.Count(),
		CPU:              cpuid.CPU.BrandName,
		CPUCores:         cpuid.CPU.LogicalCores,
		CompileSeconds:   time.Since(start).Seconds(),
	}
	return e, nil
}

func inferClasses(splits ...*dataset.Arrays) int {
	max := int32(0)
	for _, split := range splits {
		for _, label := range split.Labels {
			if label > max {
				max = label
			}
		}
	}
	return int(max) + 1
}

// Close releases the underlying virtual machines.
func (e *Experiment) Close() error {
	err := e.model.Close()
	if e.eval != e.model {
		if cerr := e.eval.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// pass runs one epoch over a split. Solver updates only when train is set;
// evaluation passes run the dropout-free graph with the latest learned
// values. An empty split yields empty stats.
func (e *Experiment) pass(ctx context.Context, split *dataset.Arrays, train bool) (*epochStats, error) {
	stats := newEpochStats(e.cfg.Classes)
	if split.Count() == 0 {
		return stats, nil
	}
	m := e.model
	if !train {
		if e.eval != e.model {
			if err := syncParameters(e.model, e.eval); err != nil {
				return stats, err
			}
		}
		m = e.eval
	}
	b := newBatcher(split, e.cfg.BatchSize, e.cfg.Classes, e.rng, train)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		xT, yT, labels, ok := b.next()
		if !ok {
			return stats, nil
		}
		loss, predicted, err := m.run(xT, yT, train)
		if err != nil {
			return stats, err
		}
		stats.observeBatch(loss, labels, predicted)
	}
}

// Train runs the epoch loop, then evaluates the test split and fills the
// report.
func (e *Experiment) Train(ctx context.Context) error {
	log.Info().Int("epochs", e.cfg.Epochs).Msg("starting training")
	var trainingTime time.Duration
	for epoch := 1; epoch <= e.cfg.Epochs; epoch++ {
		start := time.Now()
		trn, err := e.pass(ctx, e.training, true)
		if err != nil {
			return err
		}
		val, err := e.pass(ctx, e.validation, false)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		trainingTime += elapsed
		row := EpochRow{
			Epoch:     epoch,
			TrainLoss: trn.meanLoss(),
			TrainAcc:  trn.conf.Accuracy(),
			ValLoss:   val.meanLoss(),
			ValAcc:    val.conf.Accuracy(),
		}
		e.History = append(e.History, row)
		log.Info().Int("epoch", epoch).
			Float64("train_loss", row.TrainLoss).Float64("train_acc", row.TrainAcc).
			Float64("val_loss", row.ValLoss).Float64("val_acc", row.ValAcc).
			Dur("elapsed", elapsed).Msg("epoch complete")
	}
	e.Report.Epochs = e.cfg.Epochs
	if e.cfg.Epochs > 0 {
		e.Report.SecondsPerEpoch = trainingTime.Seconds() / float64(e.cfg.Epochs)
	}

	tst, err := e.pass(ctx, e.testing, false)
	if err != nil {
		return err
	}
	e.recordTest(tst)
	return nil
}

// Test evaluates the test split only, without any training pass. Used by
// the evaluation tool after LoadParameters.
func (e *Experiment) Test(ctx context.Context) (*Confusion, error) {
	tst, err := e.pass(ctx, e.testing, false)
	if err != nil {
		return nil, err
	}
	e.recordTest(tst)
	return tst.conf, nil
}

func (e *Experiment) recordTest(tst *epochStats) {
	e.Report.TestLoss = tst.meanLoss()
	e.Report.TestAccuracy = tst.conf.Accuracy()
	e.Report.TestPrecision = tst.conf.MacroPrecision()
	e.Report.TestRecall = tst.conf.MacroRecall()
	log.Info().Float64("loss", e.Report.TestLoss).
		Float64("accuracy", e.Report.TestAccuracy).
		Float64("precision", e.Report.TestPrecision).
		Float64("recall", e.Report.TestRecall).
		Msg("test metrics")
}

// Save writes the report, the per-epoch history, and the learned
// parameters to the output directory.
func (e *Experiment) Save() error {
	if err := writeJSON(filepath.Join(e.cfg.OutDir, "experiment.json"), e.Report); err != nil {
		return err
	}
	if err := e.writeHistory(filepath.Join(e.cfg.OutDir, "training_progress.csv")); err != nil {
		return err
	}
	return e.SaveParameters(filepath.Join(e.cfg.OutDir, ParametersName))
}

func (e *Experiment) writeHistory(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create history (%s): %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"Epoch", "Trn_Err", "Trn_Acc", "Val_Err", "Val_Acc"}); err != nil {
		f.Close()
		return fmt.Errorf("write history (%s): %w", path, err)
	}
	for _, row := range e.History {
		record := []string{
			strconv.Itoa(row.Epoch),
			formatFloat(row.TrainLoss),
			formatFloat(row.TrainAcc),
			formatFloat(row.ValLoss),
			formatFloat(row.ValAcc),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write history (%s): %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush history (%s): %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
