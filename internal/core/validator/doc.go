// Package validator 实现事件与过滤器校验
//
// 事件校验按固定顺序进行，遇到第一个失败立即返回：
//
//  1. 必填：id、pubkey、sig 非空，created_at > 0
//  2. 格式：id、pubkey 为 64 个十六进制字符，sig 为 128 个
//  3. 内容大小：UTF-8 字节数不超过上限（默认 64 KiB）
//  4. 标签：无空标签，标签名非空
//  5. 标识：重新计算规范序列化与 id，须与存储的 id 一致（忽略大小写）
//
// 签名校验是可选的独立步骤，ValidateEventComplete 组合两者。
// 所有检查都是同步纯计算，不会阻塞。
package validator
