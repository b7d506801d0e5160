// Package predict 实现预测物化：把持久化的候选模型按选择规则加载为
// 一个不可变的集成（Ensemble），并暴露行级预测函数。
//
// 集成构造一次后被任意多个并发预测调用只读共享（广播语义），
// 预测路径上不会再访问存储。
package predict

import (
	"context"
	"fmt"

	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/version"
)

// Ensemble 是按序排列的已加载模型集合（长度 ≥ 1）加上行级打分函数。
// 构造完成后不可变，并发读安全。
type Ensemble struct {
	members []core.ModelHandle
}

// Materialize 将版本目录中被 selection 选中的候选加载为一个集成。
// versionedRoot 是已解析的版本目录（见 version.Manager.CurrentVersion）。
func Materialize(
	ctx context.Context,
	store core.ModelStore,
	versionedRoot string,
	sel version.Selection,
	load core.Loader,
) (*Ensemble, error) {
	if load == nil {
		return nil, core.NewDomainError(core.ModulePredict, core.ErrorCodeConfigInvalid,
			"predict: model loader is required")
	}

	mgr := version.NewManager(store)
	paths, err := mgr.Resolve(ctx, versionedRoot, sel)
	if err != nil {
		return nil, err
	}

	members := make([]core.ModelHandle, 0, len(paths))
	for _, p := range paths {
		h, err := load(ctx, store, p)
		if err != nil {
			return nil, fmt.Errorf("predict: load %s: %w", p, err)
		}
		members = append(members, h)
	}
	return &Ensemble{members: members}, nil
}

// MaterializeLatest 是针对未解析 root 的便捷入口：
// 先解析最新版本目录，再按 selection 物化。
func MaterializeLatest(
	ctx context.Context,
	store core.ModelStore,
	root string,
	sel version.Selection,
	load core.Loader,
) (*Ensemble, error) {
	mgr := version.NewManager(store)
	versionedRoot, err := mgr.CurrentVersion(ctx, root)
	if err != nil {
		return nil, err
	}
	return Materialize(ctx, store, versionedRoot, sel, load)
}

// Members 返回集成的成员数。
func (e *Ensemble) Members() int { return len(e.members) }

// Member 返回第 i 个成员句柄（按持久化序号升序）。
func (e *Ensemble) Member(i int) core.ModelHandle { return e.members[i] }

// PredictRow 对一行特征做集成预测：每个成员产出 (置信度, 输出)，
// 取置信度最大者的输出；平手时取成员序较小者。
func (e *Ensemble) PredictRow(features core.Row) (float64, error) {
	best := -1
	bestConf := 0.0
	bestOut := 0.0

	for i, m := range e.members {
		if err := checkArity(i, m, features); err != nil {
			return 0, err
		}
		p, err := m.PredictRow(features)
		if err != nil {
			return 0, fmt.Errorf("predict: member %d (%s): %w", i, m.Algorithm(), err)
		}
		// 严格大于才替换：平手保留先出现的成员
		if best < 0 || p.Confidence > bestConf {
			best, bestConf, bestOut = i, p.Confidence, p.Output
		}
	}
	return bestOut, nil
}

// Probabilities 返回每个成员的完整概率向量（诊断用）。
// 不具备 Scorable 能力的成员退化为单元素向量 [置信度]。
func (e *Ensemble) Probabilities(features core.Row) ([][]float64, error) {
	out := make([][]float64, 0, len(e.members))
	for i, m := range e.members {
		if err := checkArity(i, m, features); err != nil {
			return nil, err
		}
		if s, ok := m.(core.Scorable); ok {
			probs, err := s.Probabilities(features)
			if err != nil {
				return nil, fmt.Errorf("predict: member %d (%s): %w", i, m.Algorithm(), err)
			}
			out = append(out, probs)
			continue
		}
		p, err := m.PredictRow(features)
		if err != nil {
			return nil, fmt.Errorf("predict: member %d (%s): %w", i, m.Algorithm(), err)
		}
		out = append(out, []float64{p.Confidence})
	}
	return out, nil
}

// RowFunc 返回可注册进上层查询引擎的行级预测函数。
// 闭包捕获的是已物化的集成，逐行调用不会重新读存储。
func (e *Ensemble) RowFunc() func(core.Row) (float64, error) {
	return e.PredictRow
}

// checkArity 校验输入行覆盖成员的全部特征列。
func checkArity(i int, m core.ModelHandle, features core.Row) error {
	for _, name := range m.FeatureNames() {
		if _, ok := features[name]; !ok {
			return core.NewDomainError(core.ModulePredict, core.ErrorCodeIncompatible,
				fmt.Sprintf("predict: member %d (%s) expects feature %q, absent from input row",
					i, m.Algorithm(), name))
		}
	}
	return nil
}
