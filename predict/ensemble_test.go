package predict_test

import (
	"context"
	"path"
	"strconv"
	"testing"

	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/predict"
	"github.com/rushteam/trainkit/store"
	"github.com/rushteam/trainkit/version"
)

// member 是可配置的集成成员：固定输出与置信度。
type member struct {
	out      float64
	conf     float64
	features []string
	probs    []float64 // 非空时具备 Scorable 能力
}

func (m *member) Algorithm() string      { return "stub" }
func (m *member) FeatureNames() []string { return m.features }

func (m *member) PredictRow(core.Row) (core.Prediction, error) {
	return core.Prediction{Output: m.out, Confidence: m.conf}, nil
}

func (m *member) Save(ctx context.Context, st core.ModelStore, dir string) error {
	return st.Put(ctx, path.Join(dir, "model.json"), []byte(strconv.FormatFloat(m.out, 'g', -1, 64)))
}

func (m *member) RawScore(core.Row) (float64, error) { return m.out, nil }

func (m *member) Probabilities(core.Row) ([]float64, error) { return m.probs, nil }

// plainMember 不具备 Scorable 能力，用于验证概率向量的退化路径。
type plainMember struct {
	out  float64
	conf float64
}

func (p *plainMember) Algorithm() string      { return "plain" }
func (p *plainMember) FeatureNames() []string { return []string{"x"} }

func (p *plainMember) PredictRow(core.Row) (core.Prediction, error) {
	return core.Prediction{Output: p.out, Confidence: p.conf}, nil
}

func (p *plainMember) Save(ctx context.Context, st core.ModelStore, dir string) error {
	return st.Put(ctx, path.Join(dir, "model.json"), []byte("plain"))
}

func ensemble(t *testing.T, members ...core.ModelHandle) *predict.Ensemble {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	mgr := version.NewManager(st)

	cands := make([]core.Candidate, len(members))
	handles := make(map[string]core.ModelHandle, len(members))
	for i, m := range members {
		cands[i] = core.Candidate{Index: i, Handle: m}
	}
	if err := mgr.Persist(ctx, "/m", cands); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	for i, m := range members {
		handles[path.Join("/m", strconv.Itoa(i))] = m
	}

	load := func(ctx context.Context, st core.ModelStore, p string) (core.ModelHandle, error) {
		h, ok := handles[p]
		if !ok {
			return nil, core.NewDomainError(core.ModuleAlgo, core.ErrorCodeNotFound, "no model at "+p)
		}
		return h, nil
	}
	e, err := predict.MaterializeLatest(ctx, st, "/m", version.All(), load)
	if err != nil {
		t.Fatalf("MaterializeLatest() error = %v", err)
	}
	return e
}

func TestPredictRowMaxConfidence(t *testing.T) {
	e := ensemble(t,
		&member{out: 0, conf: 0.6, features: []string{"x"}},
		&member{out: 1, conf: 0.9, features: []string{"x"}},
		&member{out: 2, conf: 0.3, features: []string{"x"}},
	)
	if e.Members() != 3 {
		t.Fatalf("Members() = %d, want 3", e.Members())
	}

	got, err := e.PredictRow(core.Row{"x": 1})
	if err != nil {
		t.Fatalf("PredictRow() error = %v", err)
	}
	if got != 1 {
		t.Errorf("PredictRow() = %v, want output of most confident member (1)", got)
	}
}

func TestPredictRowTieKeepsFirstMember(t *testing.T) {
	e := ensemble(t,
		&member{out: 0, conf: 0.9, features: []string{"x"}},
		&member{out: 1, conf: 0.5, features: []string{"x"}},
		&member{out: 2, conf: 0.9, features: []string{"x"}},
	)

	got, err := e.PredictRow(core.Row{"x": 1})
	if err != nil {
		t.Fatalf("PredictRow() error = %v", err)
	}
	if got != 0 {
		t.Errorf("PredictRow() = %v, want tie broken toward member 0", got)
	}
}

func TestPredictRowMissingFeature(t *testing.T) {
	e := ensemble(t,
		&member{out: 0, conf: 0.6, features: []string{"x", "y"}},
	)

	_, err := e.PredictRow(core.Row{"x": 1})
	if err == nil || !core.IsIncompatible(err) {
		t.Fatalf("PredictRow() error = %v, want INCOMPATIBLE for missing feature", err)
	}
}

func TestProbabilities(t *testing.T) {
	e := ensemble(t,
		&member{out: 1, conf: 0.7, features: []string{"x"}, probs: []float64{0.3, 0.7}},
		&plainMember{out: 0, conf: 0.6},
	)

	got, err := e.Probabilities(core.Row{"x": 1})
	if err != nil {
		t.Fatalf("Probabilities() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Probabilities() rows = %d, want one per member", len(got))
	}
	if len(got[0]) != 2 || got[0][1] != 0.7 {
		t.Errorf("member 0 probabilities = %v, want full vector [0.3 0.7]", got[0])
	}
	// 无 Scorable 能力的成员退化为单元素向量 [置信度]
	if len(got[1]) != 1 || got[1][0] != 0.6 {
		t.Errorf("member 1 probabilities = %v, want [0.6]", got[1])
	}
}

func TestMaterializeBestSingleMember(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	mgr := version.NewManager(st)

	low, high := 0.5, 0.9
	m0 := &member{out: 0, conf: 1, features: []string{"x"}}
	m1 := &member{out: 1, conf: 1, features: []string{"x"}}
	err := mgr.Persist(ctx, "/m", []core.Candidate{
		{Index: 0, Handle: m0, Metric: &low},
		{Index: 1, Handle: m1, Metric: &high},
	})
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	load := func(ctx context.Context, st core.ModelStore, p string) (core.ModelHandle, error) {
		if p == "/m/1" {
			return m1, nil
		}
		return m0, nil
	}
	e, err := predict.Materialize(ctx, st, "/m", version.Best(), load)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if e.Members() != 1 {
		t.Fatalf("Members() = %d, want 1 for Best selection", e.Members())
	}
	got, err := e.PredictRow(core.Row{"x": 1})
	if err != nil {
		t.Fatalf("PredictRow() error = %v", err)
	}
	if got != 1 {
		t.Errorf("PredictRow() = %v, want best candidate's output", got)
	}
}

func TestMaterializeRequiresLoader(t *testing.T) {
	_, err := predict.Materialize(context.Background(), store.NewMemoryStore(), "/m", version.All(), nil)
	if !core.IsConfigInvalid(err) {
		t.Errorf("Materialize() without loader error = %v, want CONFIG_INVALID", err)
	}
}
