package version

// SelectionMode 标记模型选择的方式。
type SelectionMode string

const (
	// SelectBest 按元数据中的指标排名取最优候选
	SelectBest SelectionMode = "best"
	// SelectIndex 取显式指定序号的候选
	SelectIndex SelectionMode = "index"
	// SelectAll 取全部候选（集成预测）
	SelectAll SelectionMode = "all"
)

// Selection 描述加载时的模型选择，仅在读取端使用。
type Selection struct {
	Mode  SelectionMode
	Index int // 仅 SelectIndex 有效
}

// Best 返回按指标排名的选择。
func Best() Selection { return Selection{Mode: SelectBest} }

// ByIndex 返回显式序号的选择。
func ByIndex(i int) Selection { return Selection{Mode: SelectIndex, Index: i} }

// All 返回全量候选的选择。
func All() Selection { return Selection{Mode: SelectAll} }
