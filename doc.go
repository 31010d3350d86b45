// Package nostrkit 是 Nostr 中继客户端引擎
//
// 提供事件签名与校验、NIP-01 帧编解码，以及带自动重连、速率限制和离线队列的
// 多中继连接池。
//
// 使用示例：
//
//	client, err := nostrkit.New(ctx, nostrkit.WithRelays("wss://relay.damus.io"))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	signed, outcomes, err := client.Publish(ctx, nostrkit.Event{
//	    CreatedAt: time.Now().Unix(),
//	    Kind:      1,
//	    Content:   "hello",
//	}, privateKey)
//
//	id, _ := client.Subscribe(ctx, "", &nostrkit.Filter{Kinds: []int{1}})
//	for ev := range client.Events() {
//	    ...
//	}
package nostrkit

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// GitCommit Git 提交哈希（通过 ldflags 注入）
var GitCommit string

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "nostrkit " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	return info
}
