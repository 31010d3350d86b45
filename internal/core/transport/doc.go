// Package transport 基于 gorilla/websocket 实现中继传输
//
// Dialer 建立 WebSocket 连接并返回 interfaces.Channel。Channel 以文本帧收发，
// 写操作串行化并带写超时；读操作可通过 context 取消（取消会关闭底层连接）。
//
// 地址规范化：
//
//	relay.example.com       -> wss://relay.example.com
//	http://host:7447        -> ws://host:7447
//	https://host            -> wss://host
package transport
