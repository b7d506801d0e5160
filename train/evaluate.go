package train

import (
	"context"
	"fmt"

	"github.com/rushteam/trainkit/core"
	"github.com/rushteam/trainkit/param"
	"github.com/rushteam/trainkit/pkg/dsl"
)

// Accuracy 返回一个准确率评估器：在保留集上逐行预测，
// 输出与标签列相等的行占比即为指标。
//
// 保留集缺少标签列时返回 EVALUATION_FAILED，编排器会把该候选的指标
// 记为缺失而不是使整个请求失败。
func Accuracy(eval core.Dataset, labelCol string) Evaluator {
	return func(ctx context.Context, h core.ModelHandle, g param.Group) (float64, error) {
		rows := eval.Rows()
		if len(rows) == 0 {
			return 0, core.NewDomainError(core.ModuleTrain, core.ErrorCodeEvaluationFailed,
				fmt.Sprintf("train: evaluation dataset %s is empty", eval.Name()))
		}

		correct := 0
		for _, row := range rows {
			label, ok := row.Get(labelCol)
			if !ok {
				return 0, core.NewDomainError(core.ModuleTrain, core.ErrorCodeEvaluationFailed,
					fmt.Sprintf("train: evaluation dataset %s has no column %q", eval.Name(), labelCol))
			}
			p, err := h.PredictRow(row)
			if err != nil {
				return 0, core.NewDomainError(core.ModuleTrain, core.ErrorCodeEvaluationFailed,
					fmt.Sprintf("train: evaluate group %d: %v", g.Index, err))
			}
			if p.Output == label {
				correct++
			}
		}
		return float64(correct) / float64(len(rows)), nil
	}
}

// NewCELEvaluator 返回一个表达式驱动的评估器：表达式逐行判定
// 预测是否"命中"，命中行占比即为指标。指标语义因此可以配置化，
// 不必为每种业务口径写一个评估器。
//
// 表达式可用变量：prediction / confidence / label / row，例如：
//
//	prediction == label
//	prediction == label && confidence > 0.8
func NewCELEvaluator(eval core.Dataset, labelCol, expr string) (Evaluator, error) {
	prg, err := dsl.NewEval(expr)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeConfigInvalid,
			fmt.Sprintf("train: evaluator expression: %v", err))
	}

	return func(ctx context.Context, h core.ModelHandle, g param.Group) (float64, error) {
		rows := eval.Rows()
		if len(rows) == 0 {
			return 0, core.NewDomainError(core.ModuleTrain, core.ErrorCodeEvaluationFailed,
				fmt.Sprintf("train: evaluation dataset %s is empty", eval.Name()))
		}

		matched := 0
		for _, row := range rows {
			label, ok := row.Get(labelCol)
			if !ok {
				return 0, core.NewDomainError(core.ModuleTrain, core.ErrorCodeEvaluationFailed,
					fmt.Sprintf("train: evaluation dataset %s has no column %q", eval.Name(), labelCol))
			}
			p, err := h.PredictRow(row)
			if err != nil {
				return 0, core.NewDomainError(core.ModuleTrain, core.ErrorCodeEvaluationFailed,
					fmt.Sprintf("train: evaluate group %d: %v", g.Index, err))
			}

			rowInput := make(map[string]any, len(row))
			for k, v := range row {
				rowInput[k] = v
			}
			hit, err := prg.Evaluate(map[string]any{
				"prediction": p.Output,
				"confidence": p.Confidence,
				"label":      label,
				"row":        rowInput,
			})
			if err != nil {
				return 0, core.NewDomainError(core.ModuleTrain, core.ErrorCodeEvaluationFailed,
					fmt.Sprintf("train: evaluate group %d: %v", g.Index, err))
			}
			if hit {
				matched++
			}
		}
		return float64(matched) / float64(len(rows)), nil
	}, nil
}
