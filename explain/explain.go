// Package explain 是元数据自省门面：对算法契约的 explain-params /
// explain-model 做只读投影，供上层查询语句（explain 类操作）消费。
// 无状态，无编排逻辑。
package explain

import (
	"context"
	"fmt"

	"github.com/rushteam/trainkit/algo"
	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/version"
)

// Params 按算法名称枚举识别的配置项与默认值。
func Params(algorithm string) ([]core.ParamDoc, error) {
	a, err := algo.Get(algorithm)
	if err != nil {
		return nil, err
	}
	return a.ExplainParams(), nil
}

// Model 自省 root 下已训练模型的内部参数/统计。
func Model(ctx context.Context, store core.ModelStore, algorithm, root string, sel version.Selection) ([]core.ModelStat, error) {
	a, err := algo.Get(algorithm)
	if err != nil {
		return nil, err
	}
	return a.ExplainModel(ctx, store, root, sel)
}

// VersionRecord 是训练历史中的一个版本：版本目录与其元数据记录。
type VersionRecord struct {
	VersionedRoot string
	Meta          *version.Metadata
}

// Versions 列出 root 下全部版本的元数据记录（按版本号升序），
// 供查询层展示训练历史。没有元数据的残留目录（未提交的写入）被跳过；
// 从未训练过的 root 返回 NOT_FOUND。
func Versions(ctx context.Context, store core.ModelStore, root string) ([]VersionRecord, error) {
	mgr := version.NewManager(store)
	roots, err := mgr.ListVersions(ctx, root)
	if err != nil {
		return nil, err
	}

	out := make([]VersionRecord, 0, len(roots))
	for _, vr := range roots {
		meta, err := mgr.ReadMetadata(ctx, vr)
		if core.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, VersionRecord{VersionedRoot: vr, Meta: meta})
	}
	if len(out) == 0 {
		return nil, core.NewDomainError(core.ModuleVersion, core.ErrorCodeNotFound,
			fmt.Sprintf("explain: no trained versions at %s", root))
	}
	return out, nil
}

// Current 解析 root 下读取端默认使用的版本目录，并返回其元数据记录。
func Current(ctx context.Context, store core.ModelStore, root string) (*version.Metadata, error) {
	mgr := version.NewManager(store)
	current, err := mgr.CurrentVersion(ctx, root)
	if err != nil {
		return nil, err
	}
	return mgr.ReadMetadata(ctx, current)
}
