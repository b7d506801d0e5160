package model

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/dataset"
	"github.com/rushteam/trainkit/store"
)

// 线性可分的二分类数据：x > 2.5 时 label 为 1。
func separable() core.Dataset {
	return dataset.New("toy", nil, []core.Row{
		{"x": 0, "label": 0},
		{"x": 1, "label": 0},
		{"x": 2, "label": 0},
		{"x": 3, "label": 1},
		{"x": 4, "label": 1},
		{"x": 5, "label": 1},
	})
}

func TestLRFitSeparable(t *testing.T) {
	est := &LREstimator{}
	h, err := est.Fit(context.Background(), separable(), map[string]string{
		"maxIter":      "500",
		"learningRate": "0.5",
	})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for _, row := range separable().Rows() {
		p, err := h.PredictRow(row)
		if err != nil {
			t.Fatalf("PredictRow(%v) error = %v", row, err)
		}
		if p.Output != row["label"] {
			t.Errorf("PredictRow(x=%v) = %v, want %v", row["x"], p.Output, row["label"])
		}
		if p.Confidence < 0.5 || p.Confidence > 1 {
			t.Errorf("PredictRow(x=%v) confidence = %v, want in [0.5, 1]", row["x"], p.Confidence)
		}
	}
}

func TestLRFitValidation(t *testing.T) {
	est := &LREstimator{}
	ctx := context.Background()

	tests := []struct {
		name   string
		ds     core.Dataset
		params map[string]string
	}{
		{"empty dataset", dataset.New("empty", nil, nil), nil},
		{"non-positive maxIter", separable(), map[string]string{"maxIter": "0"}},
		{"non-positive learningRate", separable(), map[string]string{"learningRate": "-1"}},
		{"label only", dataset.New("labels", nil, []core.Row{{"label": 1}}), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := est.Fit(ctx, tt.ds, tt.params); err == nil {
				t.Error("Fit() expected error")
			}
		})
	}
}

func TestLRSaveLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	m := &LRModel{
		Bias:     -2.5,
		Weights:  map[string]float64{"x": 1.5},
		Features: []string{"x"},
	}
	if err := m.Save(ctx, st, "/m/0"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadLR(ctx, st, "/m/0")
	if err != nil {
		t.Fatalf("LoadLR() error = %v", err)
	}
	row := core.Row{"x": 3}
	want, _ := m.PredictRow(row)
	got, err := loaded.PredictRow(row)
	if err != nil {
		t.Fatalf("PredictRow() error = %v", err)
	}
	if got != want {
		t.Errorf("loaded model prediction = %+v, want %+v", got, want)
	}
}

func TestLoadLRMissing(t *testing.T) {
	_, err := LoadLR(context.Background(), store.NewMemoryStore(), "/m/0")
	if err == nil || !core.IsNotFound(err) {
		t.Fatalf("LoadLR() on empty store error = %v, want NOT_FOUND", err)
	}
}

func TestLRProbabilitiesSumToOne(t *testing.T) {
	m := &LRModel{Bias: 0.3, Weights: map[string]float64{"x": -0.7}, Features: []string{"x"}}

	probs, err := m.Probabilities(core.Row{"x": 2})
	if err != nil {
		t.Fatalf("Probabilities() error = %v", err)
	}
	if len(probs) != 2 {
		t.Fatalf("Probabilities() = %v, want [P(0) P(1)]", probs)
	}
	if math.Abs(probs[0]+probs[1]-1) > 1e-12 {
		t.Errorf("probabilities sum = %v, want 1", probs[0]+probs[1])
	}
}

func TestLRMissingFeature(t *testing.T) {
	m := &LRModel{Weights: map[string]float64{"x": 1}, Features: []string{"x"}}

	if _, err := m.PredictRow(core.Row{"y": 1}); !core.IsIncompatible(err) {
		t.Errorf("PredictRow() error = %v, want INCOMPATIBLE", err)
	}
}

func TestLRStats(t *testing.T) {
	m := &LRModel{
		Bias:     0.5,
		Weights:  map[string]float64{"b": 2, "a": 1},
		Features: []string{"b", "a"},
	}
	stats := m.Stats()
	if len(stats) != 3 {
		t.Fatalf("Stats() = %v, want bias + 2 weights", stats)
	}
	if stats[0].Name != "bias" || stats[1].Name != "weight.a" || stats[2].Name != "weight.b" {
		t.Errorf("Stats() order = [%s %s %s], want bias then weights ascending",
			stats[0].Name, stats[1].Name, stats[2].Name)
	}
}
