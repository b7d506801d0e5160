package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），经 %w 包装后仍可被识别
//
// 使用场景：
//   - Param 错误：CONFIG_INVALID（fitParam 键格式非法）
//   - Version 错误：NOT_FOUND, INDEX_NOT_FOUND
//   - Train 错误：TRAINING_FAILED, EVALUATION_FAILED
//   - Predict 错误：INCOMPATIBLE（特征维度不匹配）
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "CONFIG_INVALID"）
	Message string // 错误消息
	Module  string // 模块名称（如 "param", "version", "train"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误链上是否有 DomainError
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError 从错误链上取出 DomainError，没有则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在（模型从未训练、路径为空）
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	// 训练编排相关错误代码
	ErrorCodeConfigInvalid    = "CONFIG_INVALID"    // 参数组键格式非法
	ErrorCodeIndexNotFound    = "INDEX_NOT_FOUND"   // 显式指定的候选序号从未持久化
	ErrorCodeIncompatible     = "INCOMPATIBLE"      // 模型特征维度与输入不一致
	ErrorCodeTrainingFailed   = "TRAINING_FAILED"   // 某个参数组训练失败（整个请求失败）
	ErrorCodeEvaluationFailed = "EVALUATION_FAILED" // 评估失败（仅降级该候选的指标为缺失）
)

// 模块名称常量
const (
	ModuleParam   = "param"   // 参数组展开模块
	ModuleVersion = "version" // 版本与路径管理模块
	ModuleTrain   = "train"   // 训练编排模块
	ModulePredict = "predict" // 预测物化模块
	ModuleStore   = "store"   // 存储模块
	ModuleAlgo    = "algo"    // 算法插件模块
)

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsConfigInvalid 检查错误是否为 CONFIG_INVALID
func IsConfigInvalid(err error) bool {
	return hasCode(err, ErrorCodeConfigInvalid)
}

// IsIndexNotFound 检查错误是否为 INDEX_NOT_FOUND
func IsIndexNotFound(err error) bool {
	return hasCode(err, ErrorCodeIndexNotFound)
}

// IsIncompatible 检查错误是否为 INCOMPATIBLE
func IsIncompatible(err error) bool {
	return hasCode(err, ErrorCodeIncompatible)
}

// IsTrainingFailed 检查错误是否为 TRAINING_FAILED
func IsTrainingFailed(err error) bool {
	return hasCode(err, ErrorCodeTrainingFailed)
}

// IsEvaluationFailed 检查错误是否为 EVALUATION_FAILED
func IsEvaluationFailed(err error) bool {
	return hasCode(err, ErrorCodeEvaluationFailed)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
