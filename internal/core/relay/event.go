package relay

import (
	"github.com/dep2p/go-nostrkit/internal/core/protocol"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

// EventKind 连接事件类型
type EventKind int

const (
	// EventStateChanged 状态变化
	EventStateChanged EventKind = iota
	// EventMessage 收到入站消息
	EventMessage
	// EventRejected 入站事件未通过校验被丢弃
	EventRejected
	// EventSubscriptionClosed 订阅结束（中继 CLOSED、断线或关闭）
	EventSubscriptionClosed
)

// String 返回事件类型名
func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state-changed"
	case EventMessage:
		return "message"
	case EventRejected:
		return "rejected"
	case EventSubscriptionClosed:
		return "subscription-closed"
	default:
		return "unknown"
	}
}

// Event 连接向观察者推送的事件，按发生顺序送达
type Event struct {
	Kind  EventKind
	Relay string

	// Prev / State 状态变化前后（EventStateChanged）
	Prev  State
	State State

	// Err 状态变化原因或拒绝原因（EventStateChanged / EventRejected）
	Err error

	// Message 入站消息（EventMessage，EventSubscriptionClosed 时可能为 *protocol.ClosedMessage）
	Message protocol.Message

	// SubscriptionID / Reason 订阅结束（EventSubscriptionClosed）
	SubscriptionID string
	Reason         string
}

// Subscription 活动订阅
type Subscription struct {
	ID      string
	Filters []*types.Filter
}
