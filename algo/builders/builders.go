// Package builders 在 init 中注册内置算法插件。
//
// 使用配置驱动时在入口处空导入：
//
//	import _ "github.com/rushteam/trainkit/algo/builders"
package builders

import (
	"github.com/rushteam/trainkit/algo"
	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/model"
)

func init() {
	algo.Register(algo.New(
		"lr",
		(&model.LREstimator{}).ParamDocs(),
		func() core.Estimator { return &model.LREstimator{} },
		model.LoadLR,
	))

	algo.Register(algo.New(
		"centroid",
		(&model.CentroidEstimator{}).ParamDocs(),
		func() core.Estimator { return &model.CentroidEstimator{} },
		model.LoadCentroid,
	))
}
