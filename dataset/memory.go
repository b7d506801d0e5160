// Package dataset 提供 core.Dataset 的内存实现。
//
// 注意：此包只包含实现，接口定义在 core 包。
// 分布式引擎的数据句柄只需实现 core.Dataset 即可接入训练编排。
package dataset

import (
	"sort"

	"github.com/rushteam/trainkit/core"
)

// Memory 是内存实现的 Dataset，用于测试/开发/单机场景。
// 构造完成后视为只读，可被所有参数组并发共享。
type Memory struct {
	name   string
	schema []string
	rows   []core.Row
}

// New 构造一个内存数据集。schema 为空时从行数据推断（列名升序）。
func New(name string, schema []string, rows []core.Row) *Memory {
	if len(schema) == 0 && len(rows) > 0 {
		seen := make(map[string]bool)
		for _, r := range rows {
			for col := range r {
				seen[col] = true
			}
		}
		schema = make([]string, 0, len(seen))
		for col := range seen {
			schema = append(schema, col)
		}
		sort.Strings(schema)
	}
	return &Memory{name: name, schema: schema, rows: rows}
}

func (m *Memory) Name() string     { return m.name }
func (m *Memory) Schema() []string { return m.schema }
func (m *Memory) Count() int       { return len(m.rows) }
func (m *Memory) Rows() []core.Row { return m.rows }

// HasColumn 检查数据集是否包含某列（评估前的 schema 校验）。
func (m *Memory) HasColumn(col string) bool {
	for _, c := range m.schema {
		if c == col {
			return true
		}
	}
	return false
}

// Split 按比例切分为训练集与评估集（前 frac 为训练集）。
// 不打乱行序，调用方需要随机切分时自行洗牌。
func (m *Memory) Split(frac float64) (*Memory, *Memory) {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	cut := int(float64(len(m.rows)) * frac)
	train := &Memory{name: m.name + "_train", schema: m.schema, rows: m.rows[:cut]}
	eval := &Memory{name: m.name + "_eval", schema: m.schema, rows: m.rows[cut:]}
	return train, eval
}

// WithColumn 返回追加一列后的新数据集（原数据集不变），用于 batch predict 的输出。
// values 的长度必须与行数一致。
func (m *Memory) WithColumn(col string, values []float64) *Memory {
	rows := make([]core.Row, len(m.rows))
	for i, r := range m.rows {
		nr := r.Clone()
		if i < len(values) {
			nr[col] = values[i]
		}
		rows[i] = nr
	}
	schema := append(append([]string{}, m.schema...), col)
	return &Memory{name: m.name, schema: schema, rows: rows}
}

var _ core.Dataset = (*Memory)(nil)
