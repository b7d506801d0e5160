package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"sort"

	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/pkg/conv"
)

// CentroidModel 是最近质心 (Nearest Centroid) 分类模型句柄。
//
// 核心思想：
//   - 训练时对每个类别求特征均值向量（质心）
//   - 预测时取与输入最近的质心对应的类别
//   - 概率向量用负距离的 softmax 近似
//
// 工程特征：
//   - 实时性：好（预测是 O(类别数 × 特征数) 的距离计算）
//   - 可解释性：强（质心本身就是类别画像）
type CentroidModel struct {
	Classes   []float64   `json:"classes"`   // 类别取值（升序）
	Centroids [][]float64 `json:"centroids"` // 与 Classes 对齐的质心向量
	Features  []string    `json:"features"`
}

func (m *CentroidModel) Algorithm() string      { return "centroid" }
func (m *CentroidModel) FeatureNames() []string { return m.Features }

func (m *CentroidModel) PredictRow(features core.Row) (core.Prediction, error) {
	probs, err := m.Probabilities(features)
	if err != nil {
		return core.Prediction{}, err
	}
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return core.Prediction{Output: m.Classes[best], Confidence: probs[best]}, nil
}

// RawScore 返回最近质心的负平方距离（Scorable 能力）。
func (m *CentroidModel) RawScore(features core.Row) (float64, error) {
	dists, err := m.distances(features)
	if err != nil {
		return 0, err
	}
	best := dists[0]
	for _, d := range dists[1:] {
		if d < best {
			best = d
		}
	}
	return -best, nil
}

// Probabilities 返回按类别排列的概率向量（负距离 softmax，Scorable 能力）。
func (m *CentroidModel) Probabilities(features core.Row) ([]float64, error) {
	dists, err := m.distances(features)
	if err != nil {
		return nil, err
	}
	// softmax(-dist)：先减去最小距离防止下溢
	min := dists[0]
	for _, d := range dists[1:] {
		if d < min {
			min = d
		}
	}
	sum := 0.0
	probs := make([]float64, len(dists))
	for i, d := range dists {
		probs[i] = math.Exp(min - d)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

func (m *CentroidModel) distances(features core.Row) ([]float64, error) {
	x := make([]float64, len(m.Features))
	for i, name := range m.Features {
		v, ok := features[name]
		if !ok {
			return nil, core.NewDomainError(core.ModulePredict, core.ErrorCodeIncompatible,
				fmt.Sprintf("centroid: feature %q absent from input row", name))
		}
		x[i] = v
	}
	dists := make([]float64, len(m.Centroids))
	for i, c := range m.Centroids {
		d := 0.0
		for j := range x {
			diff := x[j] - c[j]
			d += diff * diff
		}
		dists[i] = d
	}
	return dists, nil
}

// Stats 以表格记录形式返回各类别质心（Explainable 能力）。
func (m *CentroidModel) Stats() []core.ModelStat {
	stats := make([]core.ModelStat, 0, len(m.Classes))
	for i, cls := range m.Classes {
		stats = append(stats, core.ModelStat{
			Name:  fmt.Sprintf("centroid.%g", cls),
			Value: fmt.Sprintf("%v", m.Centroids[i]),
		})
	}
	return stats
}

func (m *CentroidModel) Save(ctx context.Context, store core.ModelStore, dir string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("centroid: marshal: %w", err)
	}
	return store.Put(ctx, path.Join(dir, ModelFile), data)
}

// LoadCentroid 从存储加载一个最近质心模型（core.Loader）。
func LoadCentroid(ctx context.Context, store core.ModelStore, dir string) (core.ModelHandle, error) {
	data, err := store.Get(ctx, path.Join(dir, ModelFile))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleAlgo, core.ErrorCodeNotFound,
				fmt.Sprintf("centroid: no model at %s", dir))
		}
		return nil, err
	}
	var m CentroidModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("centroid: parse model at %s: %w", dir, err)
	}
	return &m, nil
}

// CentroidEstimator 按类别求特征均值训练 CentroidModel。
//
// 识别的参数：
//   - labelCol: 标签列名，默认 "label"
type CentroidEstimator struct{}

func (e *CentroidEstimator) Name() string { return "centroid" }

func (e *CentroidEstimator) Fit(ctx context.Context, ds core.Dataset, params map[string]string) (core.ModelHandle, error) {
	labelCol := conv.ParamString(params, "labelCol", "label")

	rows := ds.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("centroid: dataset %s is empty", ds.Name())
	}
	features := featureColumns(ds, labelCol)
	if len(features) == 0 {
		return nil, fmt.Errorf("centroid: dataset %s has no feature columns besides %q", ds.Name(), labelCol)
	}

	sums := make(map[float64][]float64)
	counts := make(map[float64]int)
	for _, row := range rows {
		y, ok := row.Get(labelCol)
		if !ok {
			return nil, fmt.Errorf("centroid: dataset %s has no column %q", ds.Name(), labelCol)
		}
		if sums[y] == nil {
			sums[y] = make([]float64, len(features))
		}
		for i, name := range features {
			sums[y][i] += row[name]
		}
		counts[y]++
	}

	classes := make([]float64, 0, len(sums))
	for cls := range sums {
		classes = append(classes, cls)
	}
	sort.Float64s(classes)

	centroids := make([][]float64, len(classes))
	for i, cls := range classes {
		c := sums[cls]
		for j := range c {
			c[j] /= float64(counts[cls])
		}
		centroids[i] = c
	}

	return &CentroidModel{Classes: classes, Centroids: centroids, Features: features}, nil
}

// ParamDocs 枚举最近质心识别的配置项（explain-params 用）。
func (e *CentroidEstimator) ParamDocs() []core.ParamDoc {
	return []core.ParamDoc{
		{Name: "labelCol", Default: "label", Doc: "标签列名"},
	}
}

var (
	_ core.Estimator   = (*CentroidEstimator)(nil)
	_ core.ModelHandle = (*CentroidModel)(nil)
	_ core.Scorable    = (*CentroidModel)(nil)
	_ core.Explainable = (*CentroidModel)(nil)
)
