package core

// Row 是一行特征数据：特征名 -> 特征值。
// 标签列（如 "label"）与普通特征列同等存放，由使用方按列名取用。
type Row map[string]float64

// Get 读取一列的值，返回 (value, ok)。
func (r Row) Get(col string) (float64, bool) {
	v, ok := r[col]
	return v, ok
}

// Clone 复制一行（用于 enrich 等需要写入的场景，避免污染原始数据）。
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset 是数据集的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（dataset）实现
//   - 训练编排只需要按列读取、行数与 schema 校验能力
//   - 底层可以是内存表、分布式引擎的句柄、或特征仓库的物化结果
//
// 并发约定：Dataset 在一次训练请求内被所有参数组只读共享，
// 实现必须保证并发读安全（不要求写安全）。
type Dataset interface {
	// Name 返回数据集名称（用于日志/错误上下文）
	Name() string

	// Schema 返回列名列表
	Schema() []string

	// Count 返回行数
	Count() int

	// Rows 返回所有行。返回的切片与行均视为只读。
	Rows() []Row
}
