// Package algo 把一个可插拔算法组装为完整的插件：参数 schema、
// 训练入口、加载器与自省入口。
//
// 设计要点：插件"持有"而非"继承"参数 schema 与评估辅助——共享行为是
// 注入的组件，不是继承链（组合优于 mixin 堆叠）。
package algo

import (
	"context"
	"fmt"

	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/dataset"
	"github.com/rushteam/trainkit/predict"
	"github.com/rushteam/trainkit/train"
	"github.com/rushteam/trainkit/version"
)

// Algorithm 是一个已注册的算法插件。
// 自身无可变状态：训练的每个参数组都从 factory 取全新的 Estimator 实例。
type Algorithm struct {
	name    string
	schema  []core.ParamDoc
	factory core.EstimatorFactory
	loader  core.Loader
}

// New 组装一个算法插件。
func New(name string, schema []core.ParamDoc, factory core.EstimatorFactory, loader core.Loader) *Algorithm {
	return &Algorithm{name: name, schema: schema, factory: factory, loader: loader}
}

// Name 返回算法名称。
func (a *Algorithm) Name() string { return a.name }

// Factory 返回算法的 Estimator 工厂。
func (a *Algorithm) Factory() core.EstimatorFactory { return a.factory }

// Loader 返回算法的模型加载器。
func (a *Algorithm) Loader() core.Loader { return a.loader }

// Train 消费完整的扁平参数表执行一次训练请求。
// 参数组的展开与并发调度委托给编排器，插件自身不重复实现分组。
func (a *Algorithm) Train(ctx context.Context, o *train.Orchestrator, req train.Request) (*train.Report, error) {
	req.Factory = a.factory
	return o.Run(ctx, req)
}

// Load 按选择规则把 root 下最新版本的候选物化为集成。
// 确定性、除 I/O 外无副作用，可重复调用。
func (a *Algorithm) Load(ctx context.Context, store core.ModelStore, root string, sel version.Selection) (*predict.Ensemble, error) {
	return predict.MaterializeLatest(ctx, store, root, sel, a.loader)
}

// Predict 物化集成并返回行级预测函数（可注册进上层查询引擎）。
func (a *Algorithm) Predict(ctx context.Context, store core.ModelStore, root string, sel version.Selection) (func(core.Row) (float64, error), error) {
	ens, err := a.Load(ctx, store, root, sel)
	if err != nil {
		return nil, err
	}
	return ens.RowFunc(), nil
}

// BatchPredict 是 load + 逐行应用的便捷组合：
// 返回追加了预测列的新数据集，输入数据集不变。
func (a *Algorithm) BatchPredict(
	ctx context.Context,
	store core.ModelStore,
	ds core.Dataset,
	root string,
	sel version.Selection,
	outputCol string,
) (core.Dataset, error) {
	if outputCol == "" {
		outputCol = "prediction"
	}
	ens, err := a.Load(ctx, store, root, sel)
	if err != nil {
		return nil, err
	}

	rows := ds.Rows()
	out := make([]core.Row, len(rows))
	for i, row := range rows {
		pred, err := ens.PredictRow(row)
		if err != nil {
			return nil, fmt.Errorf("algo: batch predict row %d: %w", i, err)
		}
		nr := row.Clone()
		nr[outputCol] = pred
		out[i] = nr
	}

	// 输入已带同名列时只覆盖值，不重复追加列
	schema := append([]string{}, ds.Schema()...)
	exists := false
	for _, c := range schema {
		if c == outputCol {
			exists = true
			break
		}
	}
	if !exists {
		schema = append(schema, outputCol)
	}
	return dataset.New(ds.Name()+"_predicted", schema, out), nil
}

// ExplainParams 枚举算法识别的配置项与默认值（只读）。
func (a *Algorithm) ExplainParams() []core.ParamDoc {
	out := make([]core.ParamDoc, len(a.schema))
	copy(out, a.schema)
	return out
}

// ExplainModel 自省已训练模型的内部参数/统计（只读）。
// 多成员集成时每行带上成员序号前缀。
func (a *Algorithm) ExplainModel(ctx context.Context, store core.ModelStore, root string, sel version.Selection) ([]core.ModelStat, error) {
	ens, err := a.Load(ctx, store, root, sel)
	if err != nil {
		return nil, err
	}

	var stats []core.ModelStat
	for i := 0; i < ens.Members(); i++ {
		ex, ok := ens.Member(i).(core.Explainable)
		if !ok {
			continue
		}
		for _, s := range ex.Stats() {
			if ens.Members() > 1 {
				s.Name = fmt.Sprintf("%d.%s", i, s.Name)
			}
			stats = append(stats, s)
		}
	}
	if len(stats) == 0 {
		return nil, core.NewDomainError(core.ModuleAlgo, core.ErrorCodeNotSupported,
			fmt.Sprintf("algo: %s model does not support explain", a.name))
	}
	return stats, nil
}
