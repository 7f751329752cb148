package experiment

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConfusionMetrics(t *testing.T) {
	c := NewConfusion(2)
	// class 0: 3 right, 1 predicted as 1; class 1: 2 right, 2 predicted as 0
	for i := 0; i < 3; i++ {
		c.Observe(0, 0)
	}
	c.Observe(0, 1)
	for i := 0; i < 2; i++ {
		c.Observe(1, 1)
	}
	c.Observe(1, 0)
	c.Observe(1, 0)

	if c.Total() != 8 {
		t.Fatalf("unexpected total: %d", c.Total())
	}
	if !approx(c.Accuracy(), 5.0/8) {
		t.Fatalf("unexpected accuracy: %v", c.Accuracy())
	}
	if !approx(c.Precision(0), 3.0/5) {
		t.Fatalf("unexpected precision(0): %v", c.Precision(0))
	}
	if !approx(c.Recall(0), 3.0/4) {
		t.Fatalf("unexpected recall(0): %v", c.Recall(0))
	}
	if !approx(c.Precision(1), 2.0/3) {
		t.Fatalf("unexpected precision(1): %v", c.Precision(1))
	}
	if !approx(c.Recall(1), 2.0/4) {
		t.Fatalf("unexpected recall(1): %v", c.Recall(1))
	}
	if !approx(c.MacroPrecision(), (3.0/5+2.0/3)/2) {
		t.Fatalf("unexpected macro precision: %v", c.MacroPrecision())
	}
	if !approx(c.MacroRecall(), (3.0/4+2.0/4)/2) {
		t.Fatalf("unexpected macro recall: %v", c.MacroRecall())
	}
}

func TestConfusionEmpty(t *testing.T) {
	c := NewConfusion(3)
	if c.Accuracy() != 0 || c.Precision(0) != 0 || c.Recall(2) != 0 {
		t.Fatalf("empty matrix should score zero")
	}
}

func TestConfusionMatrixIsCopy(t *testing.T) {
	c := NewConfusion(2)
	c.Observe(0, 1)
	m := c.Matrix()
	if m[0][1] != 1 {
		t.Fatalf("unexpected matrix: %v", m)
	}
	m[0][1] = 99
	if c.Count(0, 1) != 1 {
		t.Fatalf("matrix should be a copy")
	}
}

func TestEpochStats(t *testing.T) {
	s := newEpochStats(2)
	if s.meanLoss() != 0 {
		t.Fatalf("empty stats should have zero loss")
	}
	s.observeBatch(1.0, []int32{0, 1}, []int{0, 0})
	s.observeBatch(3.0, []int32{1, 1}, []int{1, 1})
	if !approx(s.meanLoss(), 2.0) {
		t.Fatalf("unexpected mean loss: %v", s.meanLoss())
	}
	if !approx(s.conf.Accuracy(), 3.0/4) {
		t.Fatalf("unexpected accuracy: %v", s.conf.Accuracy())
	}
}

func TestArgmaxRows(t *testing.T) {
	values := []float32{0.1, 0.9, 0.5, 0.3, 0.2, 0.2}
	got := argmaxRows(values, 3, 2)
	want := []int{1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected argmax: %v", got)
		}
	}
}
