// Package main 提供 nostrkit 命令行入口
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	nostrkit "github.com/dep2p/go-nostrkit"
	"github.com/dep2p/go-nostrkit/config"
	"github.com/dep2p/go-nostrkit/internal/core/codec"
	"github.com/dep2p/go-nostrkit/internal/util/logger"
	"github.com/dep2p/go-nostrkit/pkg/lib/crypto"
)

var log = logger.Logger("cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	keyArg     = flag.String("key", "", "私钥：64 位十六进制或密钥文件路径")
	publish    = flag.String("publish", "", "发布的内容")
	kind       = flag.Int("kind", 1, "发布事件的 kind")
	filterArg  = flag.String("filter", "", `订阅过滤器 JSON，例如 '{"kinds":[1],"limit":20}'`)
	logLevel   = flag.String("log-level", "", "日志级别，例如 info 或 relay=debug,warn")
	genKey     = flag.Bool("gen-key", false, "生成新私钥并退出")
	ackWait    = flag.Duration("wait", 5*time.Second, "发布后等待中继 OK 确认的时间")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var relays relayList
	flag.Var(&relays, "relay", "中继地址，可重复指定")
	flag.Parse()

	if *showVersion {
		fmt.Println(nostrkit.VersionInfo())
		return nil
	}
	if *genKey {
		return printNewKey()
	}
	if *logLevel != "" {
		logger.ApplyLevelSpec(*logLevel)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	cfg.Relays = append(cfg.Relays, relays...)
	cfg.Relays = append(cfg.Relays, relaysFromEnv()...)
	if len(cfg.Relays) == 0 {
		return errors.New("no relays: use -relay or set relays in the config file")
	}
	if *publish == "" && *filterArg == "" {
		return errors.New("nothing to do: use -publish and/or -filter")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := nostrkit.New(ctx, nostrkit.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = client.Close() }()

	for url, state := range client.States() {
		log.Info("relay", "url", url, "state", state)
	}

	if *publish != "" {
		if err := doPublish(ctx, client); err != nil {
			return err
		}
	}
	if *filterArg == "" {
		return nil
	}

	filter, err := parseFilter(*filterArg)
	if err != nil {
		return err
	}
	subID, out := client.Subscribe(ctx, "", filter)
	if !out.AnySucceeded() {
		return fmt.Errorf("subscribe failed: %w", out.Err())
	}
	log.Info("subscribed", "id", subID, "relays", len(out.Succeeded()))

	fmt.Fprintln(os.Stderr, "订阅中，按 Ctrl+C 退出")
	stream(ctx, client)
	return nil
}

func doPublish(ctx context.Context, client *nostrkit.Client) error {
	key := *keyArg
	if key == "" {
		key = os.Getenv("NOSTRKIT_KEY")
	}
	priv, err := loadKey(key)
	if err != nil {
		return err
	}

	draft := nostrkit.Event{
		CreatedAt: time.Now().Unix(),
		Kind:      *kind,
		Tags:      nostrkit.Tags{},
		Content:   *publish,
	}
	signed, out, err := client.Publish(ctx, draft, priv)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	fmt.Printf("event %s\n", signed.ID)
	for _, o := range out {
		switch {
		case o.Written():
			fmt.Printf("  %-40s written\n", o.Relay)
		case o.Queued:
			fmt.Printf("  %-40s queued\n", o.Relay)
		default:
			fmt.Printf("  %-40s %v\n", o.Relay, o.Err)
		}
	}
	if !out.AnySucceeded() {
		return errors.New("no relay accepted the event")
	}

	acks := awaitAcks(ctx, client, signed.ID, out.Succeeded(), *ackWait)
	accepted := 0
	for _, url := range out.Succeeded() {
		ack, acked := acks[url]
		switch {
		case !acked:
			fmt.Printf("  %-40s no acknowledgment\n", url)
		case ack.Success:
			accepted++
			fmt.Printf("  %-40s ok %s\n", url, ack.Reason)
		default:
			fmt.Printf("  %-40s rejected: %s\n", url, ack.Reason)
		}
	}
	if accepted == 0 && !out.AnyWritten() {
		return errors.New("event is still queued on every relay and was not delivered")
	}
	return nil
}

// awaitAcks 读取事件流直到 relays 都回复了 OK 或超时
//
// 等待期间队列中的帧在中继恢复连接后仍会冲刷。
func awaitAcks(ctx context.Context, client *nostrkit.Client, eventID string, relays []string, wait time.Duration) map[string]*nostrkit.OKMessage {
	acks := make(map[string]*nostrkit.OKMessage, len(relays))
	if wait <= 0 || len(relays) == 0 {
		return acks
	}
	pending := make(map[string]bool, len(relays))
	for _, url := range relays {
		pending[url] = true
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return acks
		case <-timer.C:
			return acks
		case ev, ok := <-client.Events():
			if !ok {
				return acks
			}
			msg, isOK := ev.Message.(*nostrkit.OKMessage)
			if !isOK || !pending[ev.Relay] || !strings.EqualFold(msg.EventID, eventID) {
				printEvent(ev)
				continue
			}
			acks[ev.Relay] = msg
			delete(pending, ev.Relay)
		}
	}
	return acks
}

// stream 打印事件直到 ctx 取消或客户端关闭
func stream(ctx context.Context, client *nostrkit.Client) {
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "\n正在关闭...")
			return
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			printEvent(ev)
		}
	}
}

func printEvent(ev nostrkit.RelayEvent) {
	switch ev.Kind {
	case nostrkit.EventMessageReceived:
		switch m := ev.Message.(type) {
		case *nostrkit.EventMessage:
			data, err := codec.SerializeComplete(m.Event)
			if err != nil {
				log.Warn("cannot serialize event", "err", err)
				return
			}
			fmt.Println(string(data))
		case *nostrkit.NoticeMessage:
			fmt.Fprintf(os.Stderr, "[%s] NOTICE %s\n", ev.Relay, m.Text)
		case *nostrkit.EOSEMessage:
			fmt.Fprintf(os.Stderr, "[%s] EOSE %s\n", ev.Relay, m.SubscriptionID)
		case *nostrkit.OKMessage:
			fmt.Fprintf(os.Stderr, "[%s] OK %s %t %s\n", ev.Relay, m.EventID, m.Success, m.Reason)
		}
	case nostrkit.EventRejected:
		log.Debug("event rejected", "relay", ev.Relay, "err", ev.Err)
	case nostrkit.EventSubscriptionClosed:
		fmt.Fprintf(os.Stderr, "[%s] subscription %s closed: %s\n", ev.Relay, ev.SubscriptionID, ev.Reason)
	case nostrkit.EventStateChanged:
		log.Info("relay state", "relay", ev.Relay, "from", ev.Prev, "to", ev.State)
	}
}

func printNewKey() error {
	priv, err := crypto.GenerateSecp256k1Key(rand.Reader)
	if err != nil {
		return err
	}
	pub, err := crypto.NewSecp256k1Signer().DerivePublicKey(priv)
	if err != nil {
		return err
	}
	fmt.Printf("private %s\npublic  %s\n", hex.EncodeToString(priv), hex.EncodeToString(pub[1:]))
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.NewConfig(), nil
	}
	return config.Load(path)
}
