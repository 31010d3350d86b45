package nostrkit

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-nostrkit/config"
	"github.com/dep2p/go-nostrkit/pkg/interfaces"
)

// Option 客户端配置选项
type Option func(*options) error

// options 内部选项结构
type options struct {
	config     *config.Config
	relays     []string
	dialer     interfaces.Dialer
	signer     interfaces.Signer
	registerer prometheus.Registerer
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// toConfig 合并显式设置的中继到配置副本
func (o *options) toConfig() *config.Config {
	cfg := *o.config
	cfg.Relays = append(append([]string(nil), o.config.Relays...), o.relays...)
	return &cfg
}

// WithConfig 使用完整配置
//
// 之后的 WithRelays 会追加到 cfg.Relays 之后。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithRelays 追加初始中继
func WithRelays(urls ...string) Option {
	return func(o *options) error {
		o.relays = append(o.relays, urls...)
		return nil
	}
}

// WithDialer 替换 WebSocket 拨号器
func WithDialer(d interfaces.Dialer) Option {
	return func(o *options) error {
		if d == nil {
			return errors.New("dialer is nil")
		}
		o.dialer = d
		return nil
	}
}

// WithSigner 替换椭圆曲线签名实现
func WithSigner(s interfaces.Signer) Option {
	return func(o *options) error {
		if s == nil {
			return errors.New("signer is nil")
		}
		o.signer = s
		return nil
	}
}

// WithMetricsRegisterer 启用连接指标并注册到 reg
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.New("registerer is nil")
		}
		o.registerer = reg
		return nil
	}
}
