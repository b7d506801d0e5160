package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("prediction", cel.DoubleType),
		cel.Variable("confidence", cel.DoubleType),
		cel.Variable("label", cel.DoubleType),
		cel.Variable("row", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Eval 是行级匹配表达式解释器，使用 CEL (Common Expression Language) 实现。
// 表达式在构造时编译一次，之后可被任意多个并发调用者复用。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：prediction == label
//   - 数值：confidence > 0.7 / row.age >= 18.0
//   - 逻辑：prediction == label && confidence > 0.5
//
// 示例：
//   - `prediction == label` → 命中即正确（即准确率语义）
//   - `(prediction - label) < 0.1 && (label - prediction) < 0.1` → 容差匹配
type Eval struct {
	expr string
	prg  cel.Program
}

// NewEval 编译一个 DSL 表达式。表达式必须返回布尔值。
func NewEval(expr string) (*Eval, error) {
	if expr == "" {
		return nil, fmt.Errorf("expression is empty")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}

	return &Eval{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本。
func (e *Eval) Expr() string { return e.expr }

// Evaluate 在一组输入上执行表达式，返回布尔结果。
// input 的键对应 CEL 变量：prediction / confidence / label / row。
func (e *Eval) Evaluate(input map[string]any) (bool, error) {
	out, _, err := e.prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}
