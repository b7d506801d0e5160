// Package trainkit 是一个训练编排工具包（Training Kit）。
//
// 设计要点：
// - Orchestrator-first: 一次 train 请求按 fitParam.<n>.<key> 展开为多个参数组并发训练评估
// - Version-first: 候选统一落入版本目录（<root>/_<n>/<index> + 元数据记录），按指标或序号解析
// - 插件可扩展: 实现 core.Estimator / core.ModelHandle 即可接入任意学习算法
package trainkit

import (
	"github.com/rushteam/trainkit/param"
	"github.com/rushteam/trainkit/predict"
	"github.com/rushteam/trainkit/train"
	"github.com/rushteam/trainkit/version"
)

// 轻量 facade：便于用户直接 import "trainkit" 使用核心抽象。
type Orchestrator = train.Orchestrator
type Request = train.Request
type Report = train.Report
type Group = param.Group
type Selection = version.Selection
type Ensemble = predict.Ensemble

var (
	NewOrchestrator = train.New
	Best            = version.Best
	ByIndex         = version.ByIndex
	All             = version.All
)
