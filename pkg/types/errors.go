// Package types 定义 nostrkit 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              编码错误
// ============================================================================

var (
	// ErrEncoding 编码错误（非法 UTF-8、非法 JSON、空标签等）
	ErrEncoding = errors.New("encoding error")

	// ErrInvalidEncoding 十六进制输入格式错误
	ErrInvalidEncoding = errors.New("invalid hex encoding")
)

// ============================================================================
//                              校验错误
// ============================================================================

var (
	// ErrStructuralInvalid 事件或过滤器结构不合法
	ErrStructuralInvalid = errors.New("structurally invalid")

	// ErrSignatureInvalid 签名校验失败
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrSignature 底层曲线库错误
	ErrSignature = errors.New("signature error")
)

// ============================================================================
//                              连接与协议错误
// ============================================================================

var (
	// ErrTransport 连接或发送失败（触发重连，不是硬失败）
	ErrTransport = errors.New("transport error")

	// ErrRateLimited 发送被限流
	ErrRateLimited = errors.New("rate limited")

	// ErrProtocolParse 无法解析的中继帧
	ErrProtocolParse = errors.New("protocol parse error")

	// ErrPrecondition 必填参数为空
	ErrPrecondition = errors.New("precondition failed")

	// ErrQueueFull 离线队列已满
	ErrQueueFull = errors.New("outbound queue full")

	// ErrClosed 连接已关闭
	ErrClosed = errors.New("connection closed")
)
