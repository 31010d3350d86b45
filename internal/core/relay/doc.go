// Package relay 实现单个中继连接
//
// # 状态机
//
//	Disconnected --Connect--> Connecting --成功--> Connected
//	Connecting   --失败-----> Reconnecting
//	Connected    --断开-----> Reconnecting
//	Reconnecting --退避到期-> Connecting
//	任意状态     --Close----> Closed（终态）
//
// # 并发模型
//
// 每个 Connection 有一个事件循环 goroutine，独占状态、出站队列、令牌桶、
// 退避计数与传输通道。公开方法只向循环提交命令并等待回复；拨号与读取
// 各由一个辅助 goroutine 完成，结果以带代次编号的消息送回循环，过期的结果被丢弃。
//
// # 出站
//
// 已连接且队列为空时，令牌桶允许则直接写出；否则按配置入队等待令牌或返回
// ErrRateLimited。未连接时帧进入有界队列（drop-oldest / reject-new），
// 连接建立后先按 FIFO 冲刷队列。写失败的帧放回队首。
//
// # 入站
//
// 读取 goroutine 按到达顺序解析帧：EVENT 经过校验，失败的事件以
// EventRejected 上报；无法解析的帧记日志后忽略；未知标签直接忽略。
//
// 断线时所有订阅结束并逐个上报。Close 取消退避等待与进行中的拨号，
// 立即进入 Closed，丢弃队列。
package relay
