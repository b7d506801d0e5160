// Package train 实现训练编排：把一次 train 请求展开成多个并发评估的
// 参数组，逐组训练与评估，最后把完整的候选集交给版本管理器持久化。
package train

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/param"
	"github.com/rushteam/trainkit/pkg/conv"
	"github.com/rushteam/trainkit/version"
)

// Evaluator 在保留数据集上为一个训练产物打分，返回标量指标。
// 评估失败只降级该候选的指标为缺失，不会使整个请求失败。
type Evaluator func(ctx context.Context, h core.ModelHandle, group param.Group) (float64, error)

// Orchestrator 驱动参数组的并发训练、评估与持久化。
//
// 并发约定：数据集句柄被所有组只读共享；同一目标路径同一时刻
// 只允许一个编排器调用在写（外部串行化，路径管理器不加锁）。
type Orchestrator struct {
	store core.ModelStore
	paths *version.Manager

	// MaxConcurrent 是参数组训练的最大并发数（0 表示不限制）
	MaxConcurrent int
}

// New 创建一个训练编排器。
func New(store core.ModelStore) *Orchestrator {
	return &Orchestrator{
		store: store,
		paths: version.NewManager(store),
	}
}

// Paths 返回编排器使用的版本管理器（读取端解析同一套布局）。
func (o *Orchestrator) Paths() *version.Manager { return o.paths }

// Request 是一次完整的训练请求。
type Request struct {
	// Factory 创建算法实例；必须无状态可重入，每个参数组各取一个实例
	Factory core.EstimatorFactory

	// Dataset 训练数据集（被所有组只读共享）
	Dataset core.Dataset

	// Path 目标根路径
	Path string

	// Params 扁平参数表：fitParam.<n>.<key> 条目 + 请求级控制参数
	// （keepVersion、labelCol 等）
	Params map[string]string

	// KeepVersion 保留历史版本（与 Params 中的 keepVersion=true 等价，取并集）
	KeepVersion bool

	// EvalDataset 可选的保留评估集；为 nil 时所有候选的指标记为缺失
	EvalDataset core.Dataset

	// Evaluator 可选的自定义评估器；为 nil 且 EvalDataset 非空时用准确率评估
	Evaluator Evaluator
}

// GroupResult 是报告中一个参数组的摘要。
type GroupResult struct {
	Index  int
	Params map[string]string
	Metric *float64
}

// Report 是一次训练请求的结果摘要（算法契约中 train 操作的返回值）。
type Report struct {
	// VersionRoot 是本次请求实际写入的版本目录
	VersionRoot string

	// Groups 按序号升序列出每个参数组的参数快照与指标
	Groups []GroupResult

	// Evaluated 标记本次请求是否执行过评估
	// （false 时 Best 选择会回退到最小序号，见 version.Manager.Resolve）
	Evaluated bool
}

// Run 执行一次完整的训练请求：展开参数组 → 并发训练评估 → 推进版本 → 持久化。
// 任何一组训练失败都使整个请求失败，且不写入任何内容（已有版本不受影响）。
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Factory == nil {
		return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeConfigInvalid,
			"train: estimator factory is required")
	}
	if req.Dataset == nil {
		return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeConfigInvalid,
			"train: dataset is required")
	}
	if req.Path == "" {
		return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeConfigInvalid,
			"train: destination path is required")
	}

	groups, err := param.Expand(req.Params)
	if err != nil {
		return nil, err
	}

	evaluator := req.Evaluator
	if evaluator == nil && req.EvalDataset != nil {
		labelCol := conv.ParamString(req.Params, "labelCol", "label")
		evaluator = Accuracy(req.EvalDataset, labelCol)
	}

	keep := req.KeepVersion || conv.ParamBool(req.Params, "keepVersion", false)
	versionedRoot, err := o.paths.NextVersion(ctx, req.Path, keep)
	if err != nil {
		return nil, err
	}

	shared := param.Shared(req.Params)
	cands, err := o.TrainAll(ctx, req.Dataset, groups, req.Factory, shared, evaluator)
	if err != nil {
		return nil, err
	}

	// 持久化屏障：所有组都完成后才写，保证版本目录要么完整要么不存在
	if err := o.paths.Persist(ctx, versionedRoot, cands); err != nil {
		return nil, err
	}

	report := &Report{VersionRoot: versionedRoot, Evaluated: evaluator != nil}
	for _, c := range cands {
		report.Groups = append(report.Groups, GroupResult{
			Index:  c.Index,
			Params: c.Params,
			Metric: c.Metric,
		})
	}
	return report, nil
}

// TrainAll 并发训练全部参数组，返回按序号升序的完整候选集。
//
//   - 每组从 factory 取一个全新实例，组间无共享可变状态
//   - Fit 的参数是请求级公共参数与组内覆盖的合并（组内优先）
//   - 评估失败记为"无指标"；训练失败立即取消同辈并使整个请求失败，
//     仍在飞行中的组可以跑完，但结果一律丢弃
func (o *Orchestrator) TrainAll(
	ctx context.Context,
	ds core.Dataset,
	groups []param.Group,
	factory core.EstimatorFactory,
	shared map[string]string,
	evaluator Evaluator,
) ([]core.Candidate, error) {
	if len(groups) == 0 {
		return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeConfigInvalid,
			"train: no parameter groups")
	}

	var (
		mu    sync.Mutex
		cands = make([]core.Candidate, 0, len(groups))
	)
	eg, gctx := errgroup.WithContext(ctx)
	if o.MaxConcurrent > 0 {
		eg.SetLimit(o.MaxConcurrent)
	}

	for _, group := range groups {
		g := group
		eg.Go(func() error {
			est := factory()
			handle, err := est.Fit(gctx, ds, param.Merge(shared, g.Params))
			if err != nil {
				// 一组训练失败对整个请求是致命的：缺失的候选会静默扭曲
				// 之后的 Best 选择，不允许部分成功
				return core.NewDomainError(core.ModuleTrain, core.ErrorCodeTrainingFailed,
					fmt.Sprintf("train: group %d (%s): %v", g.Index, est.Name(), err))
			}

			var metric *float64
			if evaluator != nil {
				if m, err := evaluator(gctx, handle, g); err == nil {
					metric = &m
				}
				// 评估失败：该候选指标缺失，不中断其他组
			}

			mu.Lock()
			cands = append(cands, core.Candidate{
				Index:  g.Index,
				Params: g.Params,
				Handle: handle,
				Metric: metric,
			})
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(cands, func(i, j int) bool { return cands[i].Index < cands[j].Index })
	return cands, nil
}
