package experiment

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepsix-ml/deepsix/internal/dataset"
)

func TestConfigValidate(t *testing.T) {
	base := Config{DataDir: "data", OutDir: "out"}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		mod  func(c *Config)
	}{
		{"missing data dir", func(c *Config) { c.DataDir = "" }},
		{"missing out dir", func(c *Config) { c.OutDir = "" }},
		{"unknown network", func(c *Config) { c.Network = "rnn" }},
		{"negative epochs", func(c *Config) { c.Epochs = -1 }},
		{"negative batch", func(c *Config) { c.BatchSize = -1 }},
		{"negative dropout", func(c *Config) { c.Dropout = -0.1 }},
		{"dropout of one", func(c *Config) { c.Dropout = 1 }},
	}
	for _, tc := range cases {
		c := base
		tc.mod(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}

	// zero epochs and batch size mean "use the defaults"
	zero := base
	zero.Epochs = 0
	zero.BatchSize = 0
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero loop values should be accepted: %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	c := Config{DataDir: "data", OutDir: "out"}.withDefaults()
	if c.Network != NetworkMLP {
		t.Fatalf("unexpected default network: %q", c.Network)
	}
	if c.Epochs != DefaultEpochs || c.BatchSize != DefaultBatchSize {
		t.Fatalf("unexpected loop defaults: %+v", c)
	}
	if c.LearnRate != DefaultLearnRate || c.Momentum != DefaultMomentum {
		t.Fatalf("unexpected solver defaults: %+v", c)
	}

	// explicit values survive
	c = Config{DataDir: "d", OutDir: "o", Network: NetworkCNN, Epochs: 3}.withDefaults()
	if c.Network != NetworkCNN || c.Epochs != 3 {
		t.Fatalf("explicit values overwritten: %+v", c)
	}
}

func TestInferClasses(t *testing.T) {
	trn := &dataset.Arrays{Labels: []int32{0, 1, 1, 0}}
	val := &dataset.Arrays{Labels: []int32{2}}
	tst := &dataset.Arrays{}
	if got := inferClasses(trn, val, tst); got != 3 {
		t.Fatalf("unexpected class count: %d", got)
	}
	if got := inferClasses(tst); got != 1 {
		t.Fatalf("unexpected class count for empty labels: %d", got)
	}
}

func TestWriteHistory(t *testing.T) {
	e := &Experiment{
		History: []EpochRow{
			{Epoch: 1, TrainLoss: 0.5, TrainAcc: 0.75, ValLoss: 0.625, ValAcc: 0.5},
			{Epoch: 2, TrainLoss: 0.25, TrainAcc: 0.875, ValLoss: 0.5, ValAcc: 0.625},
		},
	}
	path := filepath.Join(t.TempDir(), "training_progress.csv")
	if err := e.writeHistory(path); err != nil {
		t.Fatalf("write history: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("unexpected row count: %d", len(records))
	}
	header := records[0]
	want := []string{"Epoch", "Trn_Err", "Trn_Acc", "Val_Err", "Val_Acc"}
	for i := range want {
		if header[i] != want[i] {
			t.Fatalf("unexpected header: %v", header)
		}
	}
	if records[1][0] != "1" || records[1][1] != "0.5" || records[2][2] != "0.875" {
		t.Fatalf("unexpected rows: %v", records[1:])
	}
}

func TestFormatFloat(t *testing.T) {
	if got := formatFloat(0.5); got != "0.5" {
		t.Fatalf("unexpected format: %q", got)
	}
	if got := formatFloat(0); got != "0" {
		t.Fatalf("unexpected format: %q", got)
	}
}

func TestClampBatch(t *testing.T) {
	if got := clampBatch(100, 7); got != 7 {
		t.Fatalf("unexpected clamp: %d", got)
	}
	if got := clampBatch(5, 7); got != 5 {
		t.Fatalf("unexpected clamp: %d", got)
	}
}
