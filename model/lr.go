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

// ModelFile 是候选子目录内的模型文件名。
const ModelFile = "model.json"

// LRModel 是训练产出的逻辑回归 (Logistic Regression) 模型句柄。
// 它是点击率预估 (CTR) 等二分类任务最基础也最经典的算法。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + sum(Weight_i * Feature_i)
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// 输出为类别（P >= 0.5 为 1，否则为 0），置信度为所选类别的概率。
type LRModel struct {
	Bias     float64            `json:"bias"`    // 偏置项 (Bias / Intercept)
	Weights  map[string]float64 `json:"weights"` // 特征权重 (Weights / Coefficients)
	Features []string           `json:"features"`
}

func (m *LRModel) Algorithm() string      { return "lr" }
func (m *LRModel) FeatureNames() []string { return m.Features }

func (m *LRModel) PredictRow(features core.Row) (core.Prediction, error) {
	z, err := m.RawScore(features)
	if err != nil {
		return core.Prediction{}, err
	}
	p := sigmoid(z)
	if p >= 0.5 {
		return core.Prediction{Output: 1, Confidence: p}, nil
	}
	return core.Prediction{Output: 0, Confidence: 1 - p}, nil
}

// RawScore 返回线性部分 z（Scorable 能力）。
func (m *LRModel) RawScore(features core.Row) (float64, error) {
	z := m.Bias
	for _, name := range m.Features {
		v, ok := features[name]
		if !ok {
			return 0, core.NewDomainError(core.ModulePredict, core.ErrorCodeIncompatible,
				fmt.Sprintf("lr: feature %q absent from input row", name))
		}
		z += m.Weights[name] * v
	}
	return z, nil
}

// Probabilities 返回 [P(0), P(1)]（Scorable 能力）。
func (m *LRModel) Probabilities(features core.Row) ([]float64, error) {
	z, err := m.RawScore(features)
	if err != nil {
		return nil, err
	}
	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

// Stats 以表格记录形式返回模型内部参数（Explainable 能力）。
func (m *LRModel) Stats() []core.ModelStat {
	stats := []core.ModelStat{{Name: "bias", Value: fmt.Sprintf("%g", m.Bias)}}
	names := append([]string{}, m.Features...)
	sort.Strings(names)
	for _, name := range names {
		stats = append(stats, core.ModelStat{
			Name:  "weight." + name,
			Value: fmt.Sprintf("%g", m.Weights[name]),
		})
	}
	return stats
}

func (m *LRModel) Save(ctx context.Context, store core.ModelStore, dir string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("lr: marshal: %w", err)
	}
	return store.Put(ctx, path.Join(dir, ModelFile), data)
}

// LoadLR 从存储加载一个逻辑回归模型（core.Loader）。
func LoadLR(ctx context.Context, store core.ModelStore, dir string) (core.ModelHandle, error) {
	data, err := store.Get(ctx, path.Join(dir, ModelFile))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleAlgo, core.ErrorCodeNotFound,
				fmt.Sprintf("lr: no model at %s", dir))
		}
		return nil, err
	}
	var m LRModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("lr: parse model at %s: %w", dir, err)
	}
	return &m, nil
}

// LREstimator 用随机梯度下降训练 LRModel。
// 一个实例只训练一个参数组，Fit 调用之间不保留状态。
//
// 识别的参数：
//   - labelCol: 标签列名，默认 "label"（取值 0/1）
//   - maxIter: 迭代轮数，默认 100
//   - learningRate: 学习率，默认 0.1
//   - l2: L2 正则系数，默认 0
type LREstimator struct{}

func (e *LREstimator) Name() string { return "lr" }

func (e *LREstimator) Fit(ctx context.Context, ds core.Dataset, params map[string]string) (core.ModelHandle, error) {
	labelCol := conv.ParamString(params, "labelCol", "label")
	maxIter := conv.ParamInt(params, "maxIter", 100)
	lr := conv.ParamFloat(params, "learningRate", 0.1)
	l2 := conv.ParamFloat(params, "l2", 0)

	if maxIter <= 0 {
		return nil, fmt.Errorf("lr: maxIter must be positive, got %d", maxIter)
	}
	if lr <= 0 {
		return nil, fmt.Errorf("lr: learningRate must be positive, got %g", lr)
	}

	rows := ds.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("lr: dataset %s is empty", ds.Name())
	}

	features := featureColumns(ds, labelCol)
	if len(features) == 0 {
		return nil, fmt.Errorf("lr: dataset %s has no feature columns besides %q", ds.Name(), labelCol)
	}

	weights := make(map[string]float64, len(features))
	bias := 0.0

	for iter := 0; iter < maxIter; iter++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for _, row := range rows {
			y, ok := row.Get(labelCol)
			if !ok {
				return nil, fmt.Errorf("lr: dataset %s has no column %q", ds.Name(), labelCol)
			}
			z := bias
			for _, name := range features {
				z += weights[name] * row[name]
			}
			grad := sigmoid(z) - y
			bias -= lr * grad
			for _, name := range features {
				weights[name] -= lr * (grad*row[name] + l2*weights[name])
			}
		}
	}

	return &LRModel{Bias: bias, Weights: weights, Features: features}, nil
}

// ParamDocs 枚举 LR 识别的配置项（explain-params 用）。
func (e *LREstimator) ParamDocs() []core.ParamDoc {
	return []core.ParamDoc{
		{Name: "labelCol", Default: "label", Doc: "标签列名（取值 0/1）"},
		{Name: "maxIter", Default: "100", Doc: "SGD 迭代轮数"},
		{Name: "learningRate", Default: "0.1", Doc: "学习率"},
		{Name: "l2", Default: "0", Doc: "L2 正则系数"},
	}
}

// featureColumns 返回除标签列外的全部列（升序，保证训练/加载一致）。
func featureColumns(ds core.Dataset, labelCol string) []string {
	cols := make([]string, 0, len(ds.Schema()))
	for _, c := range ds.Schema() {
		if c != labelCol {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	return cols
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

var (
	_ core.Estimator   = (*LREstimator)(nil)
	_ core.ModelHandle = (*LRModel)(nil)
	_ core.Scorable    = (*LRModel)(nil)
	_ core.Explainable = (*LRModel)(nil)
)
