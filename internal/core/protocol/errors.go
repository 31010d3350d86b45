package protocol

import "fmt"

// RejectedEventError 入站事件未通过校验
//
// Cause 为 types.ErrStructuralInvalid 或 types.ErrSignatureInvalid。
type RejectedEventError struct {
	SubscriptionID string
	EventID        string
	Reason         string
	Cause          error
}

// Error 实现 error 接口
func (e *RejectedEventError) Error() string {
	return fmt.Sprintf("rejected event %s on subscription %q: %s", e.EventID, e.SubscriptionID, e.Reason)
}

// Unwrap 返回失败分类
func (e *RejectedEventError) Unwrap() error {
	return e.Cause
}
