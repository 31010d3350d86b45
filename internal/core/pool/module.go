package pool

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-nostrkit/internal/core/protocol"
	"github.com/dep2p/go-nostrkit/internal/core/relay"
	"github.com/dep2p/go-nostrkit/pkg/interfaces"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params 构造连接池所需的依赖
type Params struct {
	fx.In

	Config  Config
	Dialer  interfaces.Dialer
	Parser  *protocol.Parser
	Metrics *relay.Metrics `optional:"true"`
	LC      fx.Lifecycle
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("pool",
		fx.Provide(ProvidePool),
	)
}

// ProvidePool 创建连接池并注册生命周期
//
// 启动时（ConnectOnStart）连接全部中继，连接失败只记录日志；停止时关闭连接池。
func ProvidePool(p Params) (*Pool, error) {
	var opts []relay.Option
	if p.Metrics != nil {
		opts = append(opts, relay.WithMetrics(p.Metrics))
	}

	pool, err := New(p.Config, p.Dialer, p.Parser, opts...)
	if err != nil {
		return nil, err
	}

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !p.Config.ConnectOnStart {
				return nil
			}
			for _, o := range pool.Connect(ctx) {
				if o.Err != nil {
					log.Warn("initial connect failed", "relay", o.Relay, "err", o.Err)
				}
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return pool.Close()
		},
	})
	return pool, nil
}
