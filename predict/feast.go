package predict

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/trainkit/core"
)

// FeastEnricher 在集成打分前从 Feast 在线特征库补齐一行的特征。
//
// 上层管道里的行往往只带实体 ID 和少量请求级特征，模型需要的画像/统计
// 特征存放在特征库中；Enricher 在预测入口一次性拉取并合并，
// 物化后的集成因此可以直接对稀疏行打分。
//
// 工程特征：
//   - 实时性：优秀（gRPC 低延迟、连接复用）
//   - 并发：客户端可被多个预测 worker 共享
type FeastEnricher struct {
	client *feastsdk.GrpcClient

	// Project 项目名称
	Project string

	// Features 要补齐的特征名列表，例如 ["driver_stats:conv_rate"]
	Features []string
}

// NewFeastEnricher 创建一个 Feast 特征补齐器。
//
// 参数：
//   - host: Feast Feature Server 主机地址，例如 "localhost"
//   - port: gRPC 端口，默认 6565
//   - project: 项目名称
//   - features: 特征名列表
func NewFeastEnricher(host string, port int, project string, features []string) (*FeastEnricher, error) {
	if port == 0 {
		port = 6565 // 默认 gRPC 端口
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("predict: feast client: %w", err)
	}
	return &FeastEnricher{client: client, Project: project, Features: features}, nil
}

// Enrich 按实体键拉取在线特征并合并到行上，返回新行（原行不变）。
// entity 形如 {"driver_id": int64(1001)}，值支持 string/int/int64/float64。
func (f *FeastEnricher) Enrich(ctx context.Context, entity map[string]any, row core.Row) (core.Row, error) {
	if len(f.Features) == 0 || len(entity) == 0 {
		return row, nil
	}

	entityRow := make(feastsdk.Row, len(entity))
	for k, v := range entity {
		switch val := v.(type) {
		case string:
			entityRow[k] = feastsdk.StrVal(val)
		case int:
			entityRow[k] = feastsdk.Int64Val(int64(val))
		case int64:
			entityRow[k] = feastsdk.Int64Val(val)
		case float64:
			entityRow[k] = feastsdk.DoubleVal(val)
		default:
			entityRow[k] = feastsdk.StrVal(fmt.Sprintf("%v", val))
		}
	}

	resp, err := f.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: f.Features,
		Entities: []feastsdk.Row{entityRow},
		Project:  f.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("predict: feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return row, nil
	}

	out := row.Clone()
	for _, name := range f.Features {
		if v, ok := rows[0][name]; ok && v != nil {
			if fv, ok := valueToFloat(v); ok {
				out[name] = fv
			}
		}
	}
	return out, nil
}

// Close 关闭底层 gRPC 连接。
func (f *FeastEnricher) Close() error {
	return f.client.Close()
}

// valueToFloat 将 Feast 的特征值转为 float64，非数值类型返回 false。
func valueToFloat(v *feasttypes.Value) (float64, bool) {
	switch t := v.GetVal().(type) {
	case *feasttypes.Value_DoubleVal:
		return t.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(t.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(t.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(t.Int32Val), true
	case *feasttypes.Value_BoolVal:
		if t.BoolVal {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}
