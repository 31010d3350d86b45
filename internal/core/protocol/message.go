package protocol

import "github.com/dep2p/go-nostrkit/pkg/types"

// 帧标签
const (
	LabelEvent  = "EVENT"
	LabelNotice = "NOTICE"
	LabelEOSE   = "EOSE"
	LabelOK     = "OK"
	LabelAuth   = "AUTH"
	LabelClosed = "CLOSED"
	LabelReq    = "REQ"
	LabelClose  = "CLOSE"
)

// Message 入站中继消息
//
// 只能由 Parser 产生，调用方通过类型断言区分变体。
type Message interface {
	// Label 返回帧标签
	Label() string

	isMessage()
}

// EventMessage 订阅推送的事件（已通过校验）
type EventMessage struct {
	SubscriptionID string
	Event          *types.Event
}

// NoticeMessage 中继通知
type NoticeMessage struct {
	Text string
}

// EOSEMessage 存量事件结束标记
type EOSEMessage struct {
	SubscriptionID string
}

// OKMessage 发布结果
type OKMessage struct {
	EventID string
	Success bool
	Reason  string
}

// AuthMessage 认证挑战
type AuthMessage struct {
	Challenge string
}

// ClosedMessage 中继主动结束订阅
type ClosedMessage struct {
	SubscriptionID string
	Reason         string
}

// UnknownMessage 未知标签，可忽略
type UnknownMessage struct {
	// Type 原始标签
	Type string

	// Raw 原始帧
	Raw []byte
}

func (*EventMessage) Label() string     { return LabelEvent }
func (*NoticeMessage) Label() string    { return LabelNotice }
func (*EOSEMessage) Label() string      { return LabelEOSE }
func (*OKMessage) Label() string        { return LabelOK }
func (*AuthMessage) Label() string      { return LabelAuth }
func (*ClosedMessage) Label() string    { return LabelClosed }
func (m *UnknownMessage) Label() string { return m.Type }

func (*EventMessage) isMessage()   {}
func (*NoticeMessage) isMessage()  {}
func (*EOSEMessage) isMessage()    {}
func (*OKMessage) isMessage()      {}
func (*AuthMessage) isMessage()    {}
func (*ClosedMessage) isMessage()  {}
func (*UnknownMessage) isMessage() {}
