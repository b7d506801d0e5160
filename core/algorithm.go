package core

import "context"

// Prediction 是一次行级预测的结果：输出值与置信度。
// 对分类模型，Output 是类别编号，Confidence 是该类别的概率；
// 对回归模型，Confidence 可恒为 1。
type Prediction struct {
	Output     float64
	Confidence float64
}

// Estimator 是可插拔学习算法的最小抽象：消费数据，产出一个模型句柄。
//
// 设计原则：
//   - 一个 Estimator 实例只训练一个参数组，实例之间不共享可变状态
//   - 参数通过不可变的 map[string]string 传入，构造后不再修改
//   - 编排器（train.Orchestrator）负责参数组展开与并发调度，
//     Estimator 不感知分组的存在
type Estimator interface {
	// Name 返回算法名称（如 "lr"）
	Name() string

	// Fit 在数据集上训练一个模型。params 是该参数组的超参覆盖，
	// 未出现的键由算法自身的默认值兜底。
	Fit(ctx context.Context, ds Dataset, params map[string]string) (ModelHandle, error)
}

// EstimatorFactory 创建全新的 Estimator 实例。
// 工厂必须是无状态、可重入的：编排器对每个参数组各调用一次。
type EstimatorFactory func() Estimator

// ModelHandle 是训练产物的句柄：可预测、可持久化。
// 句柄一旦构造完成即不可变，可被任意多个并发读者共享。
type ModelHandle interface {
	// Algorithm 返回产出该模型的算法名称
	Algorithm() string

	// FeatureNames 返回模型消费的特征列（用于预测时的维度校验）
	FeatureNames() []string

	// PredictRow 对一行特征做预测。实现不得修改自身状态。
	PredictRow(features Row) (Prediction, error)

	// Save 将模型写入存储的指定路径下
	Save(ctx context.Context, store ModelStore, path string) error
}

// Loader 从存储中加载一个模型句柄。
// 必须是确定性的、除 I/O 外无副作用，可重复调用。
// 路径下不存在模型时返回 NOT_FOUND 领域错误。
type Loader func(ctx context.Context, store ModelStore, path string) (ModelHandle, error)

// Scorable 是模型句柄的可选打分能力接口。
// 取代"按方法名反射调用"：需要原始分/概率向量的算法静态实现此接口。
type Scorable interface {
	// RawScore 返回未归一化的原始分（如 LR 的线性部分）
	RawScore(features Row) (float64, error)

	// Probabilities 返回完整的概率向量（按类别编号排列）
	Probabilities(features Row) ([]float64, error)
}

// Explainable 是模型句柄的可选自省能力接口，
// 供 explain 门面读取训练后模型的内部参数/统计。
type Explainable interface {
	// Stats 以表格记录形式返回模型内部状态
	Stats() []ModelStat
}

// Candidate 是一个参数组的训练结果：模型句柄、参数快照、可选的评估指标。
// Metric 为 nil 表示未评估或评估失败（二者在元数据中同样记为缺失）。
type Candidate struct {
	Index  int
	Params map[string]string
	Handle ModelHandle
	Metric *float64
}

// ParamDoc 描述算法识别的一个配置项（explain-params 的一行）。
type ParamDoc struct {
	Name    string
	Default string
	Doc     string
}

// ModelStat 是模型自省输出的一行记录（explain-model 的一行）。
type ModelStat struct {
	Name  string
	Value string
}
