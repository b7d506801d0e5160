// Package version 实现模型的版本目录协议与路径管理。
//
// 目录布局：
//
//	<root>/_<n>/<index>/...   第 n 个版本中第 index 个候选的模型文件
//	<root>/_<n>/__meta__.json 该版本的元数据记录（参数快照 + 指标）
//
// 不保留历史版本时，版本目录退化为 <root> 本身（覆盖写语义）。
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rushteam/trainkit/core"
)

const (
	// versionDirPrefix 是版本目录名前缀：_0, _1, _2 ...
	versionDirPrefix = "_"

	// MetaFile 是版本目录内的元数据记录文件名
	MetaFile = "__meta__.json"
)

// Entry 是元数据记录中的一行：一个候选的序号、参数快照与指标。
// Metric 为 nil 表示该候选没有评估指标（未提供评估集或评估失败）。
type Entry struct {
	Index     int               `json:"index"`
	Algorithm string            `json:"algorithm"`
	Params    map[string]string `json:"params"`
	Metric    *float64          `json:"metric"`
}

// Metadata 是一个版本目录的完整元数据记录。
// 要么列出该次请求的全部参数组，要么整个文件不存在——不存在部分写入。
type Metadata struct {
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// Manager 负责版本号推进、候选子路径计算、元数据读写与模型选择解析。
//
// 并发约定：同一 root 上的版本推进与持久化必须由调用方串行化
// （多写者并发推进同一 root 不安全）；解析与读取可任意并发。
type Manager struct {
	store core.ModelStore
}

// NewManager 创建一个路径管理器。
func NewManager(store core.ModelStore) *Manager {
	return &Manager{store: store}
}

// NextVersion 计算下一个版本目录。
//   - keep=false：返回固定的 root（覆盖写语义，重复调用幂等）
//   - keep=true：返回 root/_<n>，n 为现存最大版本号加一（无现存版本时为 0）
func (m *Manager) NextVersion(ctx context.Context, root string, keep bool) (string, error) {
	if !keep {
		return root, nil
	}
	latest, err := m.latestVersion(ctx, root)
	if err != nil {
		return "", err
	}
	return path.Join(root, versionDirPrefix+strconv.Itoa(latest+1)), nil
}

// CurrentVersion 解析读取端默认使用的版本目录：
// 最新的 root/_<n>；没有任何版本目录时返回 root 本身。
func (m *Manager) CurrentVersion(ctx context.Context, root string) (string, error) {
	latest, err := m.latestVersion(ctx, root)
	if err != nil {
		return "", err
	}
	if latest < 0 {
		return root, nil
	}
	return path.Join(root, versionDirPrefix+strconv.Itoa(latest)), nil
}

// ListVersions 返回 root 下现存的全部版本目录，按版本号升序。
// 没有任何 _<n> 目录时返回 root 本身（覆盖写布局退化为单版本）。
func (m *Manager) ListVersions(ctx context.Context, root string) ([]string, error) {
	names, err := m.store.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("version: list %s: %w", root, err)
	}
	nums := make([]int, 0, len(names))
	for _, name := range names {
		if !strings.HasPrefix(name, versionDirPrefix) {
			continue
		}
		n, err := strconv.Atoi(name[len(versionDirPrefix):])
		if err != nil || n < 0 {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return []string{root}, nil
	}
	sort.Ints(nums)
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = path.Join(root, versionDirPrefix+strconv.Itoa(n))
	}
	return out, nil
}

// latestVersion 返回现存最大版本号，无版本目录时返回 -1。
func (m *Manager) latestVersion(ctx context.Context, root string) (int, error) {
	names, err := m.store.List(ctx, root)
	if err != nil {
		return 0, fmt.Errorf("version: list %s: %w", root, err)
	}
	latest := -1
	for _, name := range names {
		if !strings.HasPrefix(name, versionDirPrefix) {
			continue
		}
		n, err := strconv.Atoi(name[len(versionDirPrefix):])
		if err != nil || n < 0 {
			continue
		}
		if n > latest {
			latest = n
		}
	}
	return latest, nil
}

// Subpath 返回版本目录内某个候选的子路径。
func Subpath(versionedRoot string, index int) string {
	return path.Join(versionedRoot, strconv.Itoa(index))
}

// Persist 将全部候选写入版本目录，并写入一条覆盖所有候选的元数据记录。
// 调用前提：候选集完整（编排器保证屏障语义）。已存在的同名版本目录被整体覆盖。
//
// 写入顺序构成提交协议：先逐候选写模型文件，元数据记录落盘即提交点，
// 之后才清理不再被本次候选集引用的旧候选。中途任何失败都让既有的
// 元数据记录保持可读——失败的请求不会摧毁上一个版本。
func (m *Manager) Persist(ctx context.Context, versionedRoot string, cands []core.Candidate) error {
	if len(cands) == 0 {
		return core.NewDomainError(core.ModuleVersion, core.ErrorCodeConfigInvalid,
			"version: no candidates to persist")
	}

	// 记下旧候选序号，提交后据此清理
	stale := make(map[int]bool)
	if prev, err := m.ReadMetadata(ctx, versionedRoot); err == nil {
		for _, e := range prev.Entries {
			stale[e.Index] = true
		}
	} else if !core.IsNotFound(err) {
		return err
	}

	meta := Metadata{CreatedAt: time.Now().UTC(), Entries: make([]Entry, 0, len(cands))}
	for _, c := range cands {
		sub := Subpath(versionedRoot, c.Index)
		if err := c.Handle.Save(ctx, m.store, sub); err != nil {
			return fmt.Errorf("version: save candidate %d to %s: %w", c.Index, sub, err)
		}
		delete(stale, c.Index)
		meta.Entries = append(meta.Entries, Entry{
			Index:     c.Index,
			Algorithm: c.Handle.Algorithm(),
			Params:    c.Params,
			Metric:    c.Metric,
		})
	}
	sort.Slice(meta.Entries, func(i, j int) bool { return meta.Entries[i].Index < meta.Entries[j].Index })

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("version: marshal metadata: %w", err)
	}
	// 提交点：元数据覆盖写之后，新候选集才对读取端可见
	if err := m.store.Put(ctx, path.Join(versionedRoot, MetaFile), data); err != nil {
		return fmt.Errorf("version: write metadata: %w", err)
	}

	for idx := range stale {
		if err := m.store.Delete(ctx, Subpath(versionedRoot, idx)); err != nil && !core.IsStoreNotFound(err) {
			return fmt.Errorf("version: remove stale candidate %d: %w", idx, err)
		}
	}
	return nil
}

// ReadMetadata 读取版本目录的元数据记录。
// 记录不存在说明该路径从未有过完整的训练产物，返回 NOT_FOUND 领域错误。
func (m *Manager) ReadMetadata(ctx context.Context, versionedRoot string) (*Metadata, error) {
	data, err := m.store.Get(ctx, path.Join(versionedRoot, MetaFile))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleVersion, core.ErrorCodeNotFound,
				fmt.Sprintf("version: no trained model at %s (never trained?)", versionedRoot))
		}
		return nil, fmt.Errorf("version: read metadata at %s: %w", versionedRoot, err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("version: parse metadata at %s: %w", versionedRoot, err)
	}
	return &meta, nil
}

// Resolve 将一个模型选择解析为候选子路径列表。
//
//   - Best：在有指标的候选中取指标最大者（平手取序号较小者）；
//     所有候选都没有指标时，回退到序号最小的候选（规范场景即序号 0），
//     元数据中显式的 metric: null 使调用方可以识别"未评估的最佳"
//   - ByIndex(i)：返回该序号的子路径；从未持久化该序号时返回 INDEX_NOT_FOUND
//     （与"从未训练"的 NOT_FOUND 区分开）
//   - All：按序号升序返回全部候选子路径（集成预测用）
func (m *Manager) Resolve(ctx context.Context, versionedRoot string, sel Selection) ([]string, error) {
	meta, err := m.ReadMetadata(ctx, versionedRoot)
	if err != nil {
		return nil, err
	}
	if len(meta.Entries) == 0 {
		return nil, core.NewDomainError(core.ModuleVersion, core.ErrorCodeNotFound,
			fmt.Sprintf("version: empty metadata at %s", versionedRoot))
	}

	switch sel.Mode {
	case SelectBest:
		best := bestEntry(meta.Entries)
		return []string{Subpath(versionedRoot, best.Index)}, nil

	case SelectIndex:
		for _, e := range meta.Entries {
			if e.Index == sel.Index {
				return []string{Subpath(versionedRoot, e.Index)}, nil
			}
		}
		return nil, core.NewDomainError(core.ModuleVersion, core.ErrorCodeIndexNotFound,
			fmt.Sprintf("version: candidate index %d was never persisted at %s (have %v)",
				sel.Index, versionedRoot, entryIndices(meta.Entries)))

	case SelectAll:
		paths := make([]string, 0, len(meta.Entries))
		for _, e := range meta.Entries {
			paths = append(paths, Subpath(versionedRoot, e.Index))
		}
		return paths, nil

	default:
		return nil, core.NewDomainError(core.ModuleVersion, core.ErrorCodeConfigInvalid,
			fmt.Sprintf("version: unknown selection mode %q", sel.Mode))
	}
}

// bestEntry 返回指标最大的候选；平手取序号小者；全部无指标时取序号最小者。
func bestEntry(entries []Entry) Entry {
	var best *Entry
	for i := range entries {
		e := &entries[i]
		if e.Metric == nil {
			continue
		}
		if best == nil || *e.Metric > *best.Metric ||
			(*e.Metric == *best.Metric && e.Index < best.Index) {
			best = e
		}
	}
	if best != nil {
		return *best
	}
	// 无任何指标：回退到序号最小的候选
	min := entries[0]
	for _, e := range entries[1:] {
		if e.Index < min.Index {
			min = e
		}
	}
	return min
}

func entryIndices(entries []Entry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Index)
	}
	sort.Ints(out)
	return out
}
