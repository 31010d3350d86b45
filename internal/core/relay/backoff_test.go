package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Geometric(t *testing.T) {
	b := NewBackoff(BackoffConfig{Base: time.Second, Factor: 2, Max: time.Minute}, nil)

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for i, w := range want {
		assert.Equal(t, w, b.Next(), "failure %d", i+1)
	}
	assert.Equal(t, 4, b.Failures())

	b.Reset()
	assert.Equal(t, 0, b.Failures())
	assert.Equal(t, time.Second, b.Next())
}

func TestBackoff_Cap(t *testing.T) {
	b := NewBackoff(BackoffConfig{Base: time.Second, Factor: 10, Max: 30 * time.Second}, nil)
	b.Next()
	b.Next()
	assert.Equal(t, 30*time.Second, b.Next())
	assert.Equal(t, 30*time.Second, b.Delay(1000))
}

func TestBackoff_Jitter(t *testing.T) {
	cfg := BackoffConfig{Base: time.Second, Factor: 2, Max: time.Minute, Jitter: 0.5}

	low := NewBackoff(cfg, func() float64 { return 0 })
	assert.Equal(t, 2*time.Second, low.Delay(2))

	high := NewBackoff(cfg, func() float64 { return 0.999 })
	d := high.Delay(2)
	assert.Greater(t, d, 2*time.Second)
	assert.Less(t, d, 3*time.Second)

	// 默认随机源落在 [d, d·1.5)
	rnd := NewBackoff(cfg, nil)
	for i := 0; i < 100; i++ {
		d := rnd.Delay(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 1500*time.Millisecond)
	}
}

func TestBackoff_DelayClampsAttempt(t *testing.T) {
	b := NewBackoff(BackoffConfig{Base: time.Second, Factor: 2, Max: time.Minute}, nil)
	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, time.Second, b.Delay(-3))
}
