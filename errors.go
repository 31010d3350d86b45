package nostrkit

import "github.com/dep2p/go-nostrkit/pkg/types"

// 公共错误定义，均可用 errors.Is 判断
var (
	// ErrEncoding 事件无法序列化
	ErrEncoding = types.ErrEncoding

	// ErrInvalidEncoding 十六进制字段格式错误
	ErrInvalidEncoding = types.ErrInvalidEncoding

	// ErrStructuralInvalid 事件或过滤器结构无效
	ErrStructuralInvalid = types.ErrStructuralInvalid

	// ErrSignatureInvalid 签名校验失败
	ErrSignatureInvalid = types.ErrSignatureInvalid

	// ErrSignature 签名计算失败
	ErrSignature = types.ErrSignature

	// ErrTransport 连接或读写失败
	ErrTransport = types.ErrTransport

	// ErrRateLimited 超出发送速率
	ErrRateLimited = types.ErrRateLimited

	// ErrProtocolParse 中继帧无法解析
	ErrProtocolParse = types.ErrProtocolParse

	// ErrPrecondition 参数不满足前置条件
	ErrPrecondition = types.ErrPrecondition

	// ErrQueueFull 离线队列已满
	ErrQueueFull = types.ErrQueueFull

	// ErrClosed 客户端或连接已关闭
	ErrClosed = types.ErrClosed
)
