// Package protocol 实现中继消息协议
//
// 中继协议的每一帧都是 JSON 数组，首元素为字符串标签。
//
// # 入站帧
//
//	["EVENT", <sub-id>, <event>]
//	["NOTICE", <text>]
//	["EOSE", <sub-id>]
//	["OK", <event-id>, <bool>, <reason?>]
//	["AUTH", <challenge>]
//	["CLOSED", <sub-id>, <reason>]
//
// # 出站帧
//
//	["EVENT", <event>]
//	["REQ", <sub-id>, <filter>]
//	["CLOSE", <sub-id>]
//	["AUTH", <event>]
//
// # 解析规则
//
// 非法 JSON、非数组、空数组、标签不是字符串、已知标签但字段缺失或类型错误，
// 返回 types.ErrProtocolParse。未知标签返回 *UnknownMessage，调用方应忽略。
//
// EVENT 帧的事件在暴露给调用方之前一定经过校验器；校验失败返回
// *RejectedEventError，其中携带订阅 id、事件 id 与原因。
package protocol
