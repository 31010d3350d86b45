package relay

import (
	"fmt"

	"github.com/dep2p/go-nostrkit/pkg/types"
)

// Queue 有界 FIFO 出站队列
//
// 由连接循环独占，不是并发安全的。
type Queue struct {
	items  [][]byte
	max    int
	policy OverflowPolicy
}

// NewQueue 创建队列
func NewQueue(cfg QueueConfig) *Queue {
	return &Queue{max: cfg.MaxSize, policy: cfg.Overflow}
}

// Push 追加到队尾
//
// 队列满时，drop-oldest 丢弃并返回队首帧；reject-new 返回 ErrQueueFull。
func (q *Queue) Push(frame []byte) (dropped []byte, err error) {
	if len(q.items) >= q.max {
		if q.policy == OverflowRejectNew {
			return nil, fmt.Errorf("%w: %d frames pending", types.ErrQueueFull, len(q.items))
		}
		dropped = q.PopFront()
	}
	q.items = append(q.items, frame)
	return dropped, nil
}

// PushFront 放回队首（写失败重试用）
//
// 队列满时丢弃并返回队尾帧。
func (q *Queue) PushFront(frame []byte) (dropped []byte) {
	if len(q.items) > 0 && len(q.items) >= q.max {
		last := len(q.items) - 1
		dropped = q.items[last]
		q.items[last] = nil
		q.items = q.items[:last]
	}
	q.items = append(q.items, nil)
	copy(q.items[1:], q.items)
	q.items[0] = frame
	return dropped
}

// PopFront 取出队首帧，队列为空时返回 nil
func (q *Queue) PopFront() []byte {
	if len(q.items) == 0 {
		return nil
	}
	frame := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return frame
}

// Len 队列长度
func (q *Queue) Len() int {
	return len(q.items)
}

// Clear 清空队列，返回丢弃的帧数
func (q *Queue) Clear() int {
	n := len(q.items)
	q.items = nil
	return n
}

// RemoveFunc 删除 match 返回 true 的帧，保持其余帧顺序，返回删除数
func (q *Queue) RemoveFunc(match func(frame []byte) bool) int {
	kept := q.items[:0]
	for _, frame := range q.items {
		if !match(frame) {
			kept = append(kept, frame)
		}
	}
	n := len(q.items) - len(kept)
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = nil
	}
	q.items = kept
	return n
}
