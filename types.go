package nostrkit

import (
	"github.com/dep2p/go-nostrkit/internal/core/pool"
	"github.com/dep2p/go-nostrkit/internal/core/protocol"
	"github.com/dep2p/go-nostrkit/internal/core/relay"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Event 签名事件
	Event = types.Event

	// Tag 单个标签
	Tag = types.Tag

	// Tags 有序标签列表
	Tags = types.Tags

	// Filter 订阅过滤器
	Filter = types.Filter

	// RelayEvent 中继连接产生的事件（状态变化、消息、拒绝、订阅结束）
	RelayEvent = relay.Event

	// RelayState 中继连接状态
	RelayState = relay.State

	// Outcome 单个中继的操作结果
	Outcome = pool.Outcome

	// Outcomes 按中继排列的结果
	Outcomes = pool.Outcomes

	// Message 中继下发的消息
	Message = protocol.Message

	// EventMessage ["EVENT", sub, event]
	EventMessage = protocol.EventMessage

	// NoticeMessage ["NOTICE", text]
	NoticeMessage = protocol.NoticeMessage

	// EOSEMessage ["EOSE", sub]
	EOSEMessage = protocol.EOSEMessage

	// OKMessage ["OK", id, success, reason]
	OKMessage = protocol.OKMessage

	// AuthMessage ["AUTH", challenge]
	AuthMessage = protocol.AuthMessage

	// ClosedMessage ["CLOSED", sub, reason]
	ClosedMessage = protocol.ClosedMessage
)

// 中继事件类型
const (
	EventStateChanged       = relay.EventStateChanged
	EventMessageReceived    = relay.EventMessage
	EventRejected           = relay.EventRejected
	EventSubscriptionClosed = relay.EventSubscriptionClosed
)

// 中继连接状态
const (
	StateDisconnected = relay.StateDisconnected
	StateConnecting   = relay.StateConnecting
	StateConnected    = relay.StateConnected
	StateReconnecting = relay.StateReconnecting
	StateClosed       = relay.StateClosed
)
