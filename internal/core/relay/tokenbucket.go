package relay

import (
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

// TokenBucket 出站令牌桶
//
// 容量为 Capacity，每秒补充 RefillPerSecond 个令牌。时间取自注入的时钟。
// nil 或未启用的桶总是放行。
type TokenBucket struct {
	limiter *rate.Limiter
	clock   clock.Clock
}

// NewTokenBucket 创建令牌桶，配置未启用时返回 nil
func NewTokenBucket(cfg RateLimitConfig, clk clock.Clock) *TokenBucket {
	if !cfg.Enabled {
		return nil
	}
	if clk == nil {
		clk = clock.New()
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(cfg.RefillPerSecond), cfg.Capacity),
		clock:   clk,
	}
}

// Allow 取一个令牌
func (b *TokenBucket) Allow() bool {
	if b == nil {
		return true
	}
	return b.limiter.AllowN(b.clock.Now(), 1)
}

// Delay 返回下一个令牌可用前的等待时间（不消耗令牌）
func (b *TokenBucket) Delay() time.Duration {
	if b == nil {
		return 0
	}
	now := b.clock.Now()
	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return time.Second
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	return d
}

// Tokens 当前可用令牌数
func (b *TokenBucket) Tokens() float64 {
	if b == nil {
		return 0
	}
	return b.limiter.TokensAt(b.clock.Now())
}
