package relay

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff 指数退避
//
// 连续 n 次失败后的等待时间为 min(Base·Factor^(n-1), Max)，再加 [0, Jitter·d) 的抖动。
// 连接成功时 Reset。不是并发安全的，由连接循环独占。
type Backoff struct {
	cfg      BackoffConfig
	failures int
	rand     func() float64
}

// NewBackoff 创建退避计数器，rnd 为 nil 时使用 math/rand/v2
func NewBackoff(cfg BackoffConfig, rnd func() float64) *Backoff {
	if rnd == nil {
		rnd = rand.Float64
	}
	return &Backoff{cfg: cfg, rand: rnd}
}

// Next 记录一次失败并返回下次尝试前的等待时间
func (b *Backoff) Next() time.Duration {
	b.failures++
	return b.Delay(b.failures)
}

// Delay 返回第 n 次连续失败后的等待时间
func (b *Backoff) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := float64(b.cfg.Base) * math.Pow(b.cfg.Factor, float64(n-1))
	if ceiling := float64(b.cfg.Max); b.cfg.Max > 0 && d > ceiling {
		d = ceiling
	}
	if b.cfg.Jitter > 0 {
		d += d * b.cfg.Jitter * b.rand()
	}
	return time.Duration(d)
}

// Failures 当前连续失败次数
func (b *Backoff) Failures() int {
	return b.failures
}

// Reset 清零失败计数
func (b *Backoff) Reset() {
	b.failures = 0
}
