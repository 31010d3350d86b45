// Package types 定义 nostrkit 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 nostrkit 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - event.go   - Event, Tag, Tags（签名事件数据模型）
//   - filter.go  - Filter（订阅过滤器及其 JSON 形态）
//   - errors.go  - 公共错误分类
//
// # 事件生命周期
//
// Event 先以未签名形态构造，随后计算 id、签名（id 与 sig 同时写入），
// 签名后即视为不可变：签名操作返回新的值，调用方不应再修改已签名事件。
package types
