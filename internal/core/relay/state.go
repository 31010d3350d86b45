package relay

// State 连接状态
type State int32

const (
	// StateDisconnected 初始状态，尚未连接
	StateDisconnected State = iota
	// StateConnecting 正在拨号
	StateConnecting
	// StateConnected 已连接
	StateConnected
	// StateReconnecting 等待退避后重连
	StateReconnecting
	// StateClosed 已关闭（终态）
	StateClosed
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
