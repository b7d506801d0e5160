package version_test

import (
	"context"
	"errors"
	"path"
	"strconv"
	"testing"

	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/store"
	"github.com/rushteam/trainkit/version"
)

// stubHandle 是测试用的最小模型句柄：Save 写一个占位文件。
type stubHandle struct {
	algo    string
	payload string
}

func (s *stubHandle) Algorithm() string      { return s.algo }
func (s *stubHandle) FeatureNames() []string { return nil }

func (s *stubHandle) PredictRow(core.Row) (core.Prediction, error) {
	return core.Prediction{}, nil
}

func (s *stubHandle) Save(ctx context.Context, st core.ModelStore, dir string) error {
	return st.Put(ctx, path.Join(dir, "model.json"), []byte(s.payload))
}

func metric(v float64) *float64 { return &v }

func candidate(index int, m *float64) core.Candidate {
	return core.Candidate{
		Index:  index,
		Params: map[string]string{"i": "x"},
		Handle: &stubHandle{algo: "stub", payload: "m"},
		Metric: m,
	}
}

func TestNextVersionOverwriteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mgr := version.NewManager(store.NewMemoryStore())

	first, err := mgr.NextVersion(ctx, "/models/demo", false)
	if err != nil {
		t.Fatalf("NextVersion() error = %v", err)
	}
	second, err := mgr.NextVersion(ctx, "/models/demo", false)
	if err != nil {
		t.Fatalf("NextVersion() error = %v", err)
	}
	if first != "/models/demo" || second != first {
		t.Errorf("NextVersion(keep=false) = %q then %q, want fixed root", first, second)
	}
}

func TestNextVersionKeepIsMonotonic(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	mgr := version.NewManager(st)
	root := "/models/demo"

	for i := 0; i < 3; i++ {
		vr, err := mgr.NextVersion(ctx, root, true)
		if err != nil {
			t.Fatalf("NextVersion() error = %v", err)
		}
		want := path.Join(root, "_"+strconv.Itoa(i))
		if vr != want {
			t.Fatalf("version %d: NextVersion() = %q, want %q", i, vr, want)
		}
		if err := mgr.Persist(ctx, vr, []core.Candidate{candidate(0, nil)}); err != nil {
			t.Fatalf("Persist() error = %v", err)
		}
	}

	current, err := mgr.CurrentVersion(ctx, root)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if current != path.Join(root, "_2") {
		t.Errorf("CurrentVersion() = %q, want newest _2", current)
	}
}

func TestCurrentVersionWithoutRetention(t *testing.T) {
	ctx := context.Background()
	mgr := version.NewManager(store.NewMemoryStore())

	current, err := mgr.CurrentVersion(ctx, "/models/demo")
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if current != "/models/demo" {
		t.Errorf("CurrentVersion() = %q, want root itself", current)
	}
}

func TestPersistOverwritesFixedRoot(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	mgr := version.NewManager(st)
	root := "/models/demo"

	cands := []core.Candidate{candidate(0, metric(0.5)), candidate(1, metric(0.6))}
	if err := mgr.Persist(ctx, root, cands); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	// 第二次持久化覆盖而非追加
	if err := mgr.Persist(ctx, root, []core.Candidate{candidate(0, metric(0.7))}); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	meta, err := mgr.ReadMetadata(ctx, root)
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	if len(meta.Entries) != 1 {
		t.Fatalf("entries after overwrite = %d, want 1", len(meta.Entries))
	}
	if _, err := st.Get(ctx, path.Join(root, "1", "model.json")); !core.IsStoreNotFound(err) {
		t.Errorf("stale candidate 1 still present after overwrite, err = %v", err)
	}
}

// faultStore 包装一个存储，使之后的所有 Put 失败（模拟写中途存储不可用）。
type faultStore struct {
	core.ModelStore
}

func (f *faultStore) Put(ctx context.Context, path string, data []byte) error {
	return errors.New("store unavailable")
}

func TestPersistFailureKeepsPreviousVersion(t *testing.T) {
	ctx := context.Background()
	base := store.NewMemoryStore()
	mgr := version.NewManager(base)
	root := "/models/demo"

	cands := []core.Candidate{candidate(0, metric(0.8)), candidate(1, metric(0.9))}
	if err := mgr.Persist(ctx, root, cands); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	// 第二次持久化的首个写入就失败
	broken := version.NewManager(&faultStore{ModelStore: base})
	if err := broken.Persist(ctx, root, []core.Candidate{candidate(0, metric(0.95))}); err == nil {
		t.Fatal("Persist() with failing store expected error")
	}

	// 失败的请求不得摧毁上一个版本：元数据与模型文件都还在，仍可解析
	meta, err := mgr.ReadMetadata(ctx, root)
	if err != nil {
		t.Fatalf("previous metadata lost after failed persist: %v", err)
	}
	if len(meta.Entries) != 2 {
		t.Fatalf("previous entries = %d, want 2", len(meta.Entries))
	}
	if _, err := base.Get(ctx, path.Join(root, "1", "model.json")); err != nil {
		t.Errorf("previous candidate blob lost: %v", err)
	}
	best, err := mgr.Resolve(ctx, root, version.Best())
	if err != nil {
		t.Fatalf("Resolve() after failed persist error = %v", err)
	}
	if len(best) != 1 || best[0] != path.Join(root, "1") {
		t.Errorf("Resolve(Best) = %v, want previous best candidate 1", best)
	}
}

func TestListVersions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	mgr := version.NewManager(st)
	root := "/models/demo"

	// 覆盖写布局：退化为单版本
	got, err := mgr.ListVersions(ctx, root)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(got) != 1 || got[0] != root {
		t.Errorf("ListVersions() = %v, want [%s]", got, root)
	}

	for i := 0; i < 3; i++ {
		vr, err := mgr.NextVersion(ctx, root, true)
		if err != nil {
			t.Fatalf("NextVersion() error = %v", err)
		}
		if err := mgr.Persist(ctx, vr, []core.Candidate{candidate(0, nil)}); err != nil {
			t.Fatalf("Persist() error = %v", err)
		}
	}

	got, err = mgr.ListVersions(ctx, root)
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	want := []string{path.Join(root, "_0"), path.Join(root, "_1"), path.Join(root, "_2")}
	if len(got) != len(want) {
		t.Fatalf("ListVersions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListVersions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		cands    []core.Candidate
		sel      version.Selection
		want     []string
		wantCode func(error) bool
	}{
		{
			name:  "best picks highest metric",
			cands: []core.Candidate{candidate(0, metric(0.81)), candidate(1, metric(0.93))},
			sel:   version.Best(),
			want:  []string{"/m/1"},
		},
		{
			name:  "best tie broken by lower index",
			cands: []core.Candidate{candidate(0, metric(0.9)), candidate(1, metric(0.9))},
			sel:   version.Best(),
			want:  []string{"/m/0"},
		},
		{
			name:  "best ignores candidates without metric",
			cands: []core.Candidate{candidate(0, nil), candidate(1, metric(0.1))},
			sel:   version.Best(),
			want:  []string{"/m/1"},
		},
		{
			name:  "best falls back to index 0 when no metrics",
			cands: []core.Candidate{candidate(0, nil), candidate(1, nil)},
			sel:   version.Best(),
			want:  []string{"/m/0"},
		},
		{
			name:  "by index returns that subpath regardless of metric",
			cands: []core.Candidate{candidate(0, metric(0.81)), candidate(1, metric(0.93))},
			sel:   version.ByIndex(0),
			want:  []string{"/m/0"},
		},
		{
			name:     "by index fails when never persisted",
			cands:    []core.Candidate{candidate(0, nil), candidate(1, nil)},
			sel:      version.ByIndex(2),
			wantCode: core.IsIndexNotFound,
		},
		{
			name:  "all returns every candidate ascending",
			cands: []core.Candidate{candidate(2, nil), candidate(0, nil)},
			sel:   version.All(),
			want:  []string{"/m/0", "/m/2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mgr := version.NewManager(store.NewMemoryStore())
			if err := mgr.Persist(ctx, "/m", tt.cands); err != nil {
				t.Fatalf("Persist() error = %v", err)
			}

			got, err := mgr.Resolve(ctx, "/m", tt.sel)
			if tt.wantCode != nil {
				if err == nil || !tt.wantCode(err) {
					t.Fatalf("Resolve() error = %v, want domain code match", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Resolve() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Resolve()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolveNeverTrained(t *testing.T) {
	ctx := context.Background()
	mgr := version.NewManager(store.NewMemoryStore())

	_, err := mgr.Resolve(ctx, "/models/absent", version.Best())
	if err == nil || !core.IsNotFound(err) {
		t.Fatalf("Resolve() on untrained root error = %v, want NOT_FOUND", err)
	}
	// "从未训练"与"显式序号不存在"必须可区分
	if core.IsIndexNotFound(err) {
		t.Errorf("Resolve() on untrained root should not report INDEX_NOT_FOUND")
	}
}
