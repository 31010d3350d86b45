package nostrkit

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-nostrkit/config"
	"github.com/dep2p/go-nostrkit/internal/core/pool"
	"github.com/dep2p/go-nostrkit/internal/core/protocol"
	"github.com/dep2p/go-nostrkit/internal/core/relay"
	"github.com/dep2p/go-nostrkit/internal/core/signature"
	"github.com/dep2p/go-nostrkit/internal/core/transport"
	"github.com/dep2p/go-nostrkit/internal/core/validator"
	"github.com/dep2p/go-nostrkit/pkg/interfaces"
	"github.com/dep2p/go-nostrkit/pkg/lib/crypto"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入
//  2. Signer → SignatureService → Validator → Parser
//  3. Dialer（WebSocket）
//  4. Metrics（可选）
//  5. Pool
func buildFxApp(o *options, c *Client) (*fx.App, error) {
	cfg := o.toConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(func(cfg *config.Config) pool.Config { return cfg.PoolConfig() }),

		fx.Provide(provideSigner(o.signer)),
		fx.Provide(signature.NewService),
		fx.Provide(provideValidator),
		fx.Provide(provideParser),
		fx.Provide(provideDialer(o.dialer)),
	}

	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() *relay.Metrics {
			return relay.NewMetrics(reg)
		}))
	}

	modules = append(modules,
		pool.Module(),
		fx.Populate(&c.pool, &c.sig),

		// 禁用 Fx 日志输出
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...), nil
}

// ════════════════════════════════════════════════════════════════════════════
// 组件提供函数
// ════════════════════════════════════════════════════════════════════════════

func provideSigner(s interfaces.Signer) func() interfaces.Signer {
	return func() interfaces.Signer {
		if s != nil {
			return s
		}
		return crypto.NewSecp256k1Signer()
	}
}

func provideValidator(sig *signature.Service, cfg *config.Config) *validator.Validator {
	return validator.New(sig, validator.WithMaxContentBytes(cfg.Validation.MaxContentBytes))
}

func provideParser(v *validator.Validator, cfg *config.Config) *protocol.Parser {
	return protocol.NewParser(v, cfg.Validation.VerifySignatures)
}

func provideDialer(d interfaces.Dialer) func(cfg *config.Config) interfaces.Dialer {
	return func(cfg *config.Config) interfaces.Dialer {
		if d != nil {
			return d
		}
		return transport.NewDialer(cfg.TransportConfig())
	}
}
