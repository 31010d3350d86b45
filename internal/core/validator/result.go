package validator

import (
	"fmt"

	"github.com/dep2p/go-nostrkit/pkg/types"
)

// Result 校验结果
type Result struct {
	// Valid 是否通过
	Valid bool

	// Reason 人类可读的失败原因（通过时为空）
	Reason string

	// Cause 失败分类：types.ErrStructuralInvalid 或 types.ErrSignatureInvalid
	Cause error
}

// Err 将失败结果转换为 error，通过时返回 nil
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", r.Cause, r.Reason)
}

func pass() Result {
	return Result{Valid: true}
}

func structural(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...), Cause: types.ErrStructuralInvalid}
}

func badSignature(reason string) Result {
	return Result{Reason: reason, Cause: types.ErrSignatureInvalid}
}
