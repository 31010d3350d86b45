// Package pool 组合多个中继连接
//
// 每个中继一个独立的 relay.Connection，相互之间不共享可变状态。
// 面向全部中继的操作（Connect、Publish、Subscribe、Unsubscribe）并发执行，
// 并发度由 MaxConcurrency 限制，结果按中继逐个返回，部分失败不会合并成单一结论。
//
// 所有连接的事件汇聚到 Events()；同一事件 id 的 EVENT 消息只转发第一次（LRU 去重）。
package pool
