// Package codec 实现事件的规范序列化与标识计算
//
// 规范序列化是事件 id 的哈希原像，格式固定为：
//
//	[0,"<pubkey>",<created_at>,<kind>,<tags>,"<content>"]
//
// 无多余空白、数字为整数、字符串为原始 UTF-8，仅转义
// 引号、反斜杠和控制字符（不做 HTML 转义）。任何偏差都会改变 id，
// 因此这里不使用 encoding/json 生成原像，而是逐字节写出。
//
// 本包全部为无状态纯函数，不会阻塞。
package codec
