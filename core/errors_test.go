package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	err := NewDomainError(ModuleVersion, ErrorCodeIndexNotFound, "version: candidate 2 never persisted")

	if got := err.Error(); got != "version: candidate 2 never persisted" {
		t.Errorf("Error() = %q", got)
	}
	if !IsDomainError(err) {
		t.Error("IsDomainError() = false")
	}
	if !IsIndexNotFound(err) {
		t.Error("IsIndexNotFound() = false")
	}
	// 同一错误不应命中其他代码的判定
	if IsNotFound(err) || IsConfigInvalid(err) {
		t.Error("error matched unrelated code checkers")
	}
}

func TestCheckersUnwrapWrappedErrors(t *testing.T) {
	base := NewDomainError(ModuleAlgo, ErrorCodeNotFound, "algo: no model at /m/0")
	wrapped := fmt.Errorf("predict: load /m/0: %w", base)

	// 跨包边界用 %w 包装后仍可按代码识别
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound(wrapped) = false")
	}
	if !IsDomainError(wrapped) {
		t.Error("IsDomainError(wrapped) = false")
	}
	if got := GetDomainError(wrapped); got != base {
		t.Errorf("GetDomainError(wrapped) = %v, want the wrapped error", got)
	}

	double := fmt.Errorf("outer: %w", wrapped)
	if !IsNotFound(double) {
		t.Error("IsNotFound(double-wrapped) = false")
	}
}

func TestCheckersOnForeignErrors(t *testing.T) {
	if IsNotFound(nil) {
		t.Error("IsNotFound(nil) = true")
	}
	if IsNotFound(errors.New("plain error")) {
		t.Error("plain error matched IsNotFound")
	}
	if IsTrainingFailed(ErrStoreNotFound) {
		t.Error("store NOT_FOUND matched TRAINING_FAILED")
	}
	// IsStoreNotFound 额外校验模块，非 store 的 NOT_FOUND 不命中
	versionErr := NewDomainError(ModuleVersion, ErrorCodeNotFound, "version: never trained")
	if IsStoreNotFound(versionErr) {
		t.Error("version NOT_FOUND matched IsStoreNotFound")
	}
	if !IsStoreNotFound(ErrStoreNotFound) {
		t.Error("IsStoreNotFound(ErrStoreNotFound) = false")
	}
}
