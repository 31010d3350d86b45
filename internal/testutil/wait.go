package testutil

import (
	"testing"
	"time"
)

// WaitForCondition 在超时前轮询条件
func WaitForCondition(timeout, interval time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// Eventually 条件在 timeout 内未满足则 fail
func Eventually(t testing.TB, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	if !WaitForCondition(timeout, 5*time.Millisecond, condition) {
		t.Fatalf("等待超时: %s", msg)
	}
}

// Receive 从通道读取一个值，超时则 fail
func Receive[T any](t testing.TB, ch <-chan T, timeout time.Duration) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("通道已关闭")
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("等待超时 %v", timeout)
	}
	var zero T
	return zero
}
