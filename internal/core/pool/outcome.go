package pool

import (
	"fmt"

	"go.uber.org/multierr"
)

// Outcome 单个中继的操作结果
type Outcome struct {
	Relay string
	Err   error

	// Queued 帧只进入了该中继的出站队列，尚未写出
	//
	// 中继恢复连接后按序冲刷；在此之前关闭会丢弃该帧。
	Queued bool
}

// OK 是否成功（包括仅入队）
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Written 帧已写入该中继的传输通道
func (o Outcome) Written() bool {
	return o.Err == nil && !o.Queued
}

// Outcomes 按中继排列的结果
type Outcomes []Outcome

// Succeeded 成功的中继
func (os Outcomes) Succeeded() []string {
	var out []string
	for _, o := range os {
		if o.Err == nil {
			out = append(out, o.Relay)
		}
	}
	return out
}

// Pending 帧仍在队列中的中继
func (os Outcomes) Pending() []string {
	var out []string
	for _, o := range os {
		if o.Err == nil && o.Queued {
			out = append(out, o.Relay)
		}
	}
	return out
}

// AnyWritten 至少一个中继已写出
func (os Outcomes) AnyWritten() bool {
	for _, o := range os {
		if o.Written() {
			return true
		}
	}
	return false
}

// Failed 失败的中继及原因
func (os Outcomes) Failed() map[string]error {
	out := make(map[string]error)
	for _, o := range os {
		if o.Err != nil {
			out[o.Relay] = o.Err
		}
	}
	return out
}

// AnySucceeded 至少一个中继成功
func (os Outcomes) AnySucceeded() bool {
	for _, o := range os {
		if o.Err == nil {
			return true
		}
	}
	return false
}

// Err 合并所有失败（带中继地址），全部成功时返回 nil
func (os Outcomes) Err() error {
	var err error
	for _, o := range os {
		if o.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", o.Relay, o.Err))
		}
	}
	return err
}

// Get 返回指定中继的结果
func (os Outcomes) Get(url string) (Outcome, bool) {
	for _, o := range os {
		if o.Relay == url {
			return o, true
		}
	}
	return Outcome{}, false
}
