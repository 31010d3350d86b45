package interfaces

import "context"

// Dialer 建立到中继的双工文本消息通道
type Dialer interface {
	// Dial 连接到指定 URL
	Dial(ctx context.Context, url string) (Channel, error)
}

// Channel 双工文本消息通道
//
// 一个 Channel 只由一个读者和一个写者使用；
// Close 会使阻塞中的 ReadMessage 返回错误。
type Channel interface {
	// ReadMessage 阻塞读取下一条文本消息
	ReadMessage(ctx context.Context) ([]byte, error)

	// WriteMessage 写入一条文本消息
	WriteMessage(ctx context.Context, data []byte) error

	// Close 关闭通道
	Close() error
}
