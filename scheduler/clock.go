package scheduler

import (
	"sync"
	"time"
)

// Clock 向拍卖引擎提供当前时间
// 实现必须是单调的，不能回拨
type Clock interface {
	Now() time.Time
}

// SystemClock 系统时间
type SystemClock struct{}

var _ Clock = SystemClock{}

func (SystemClock) Now() time.Time { return time.Now() }

// MonotonicClock 包装一个Clock，保证返回的时间永远不会早于上一次返回的时间
// 系统时间被回拨时，停在上一次的读数上直到追上
type MonotonicClock struct {
	mtx    sync.Mutex
	source Clock
	last   time.Time
}

var _ Clock = (*MonotonicClock)(nil)

func NewMonotonicClock(source Clock) *MonotonicClock {
	if source == nil {
		source = SystemClock{}
	}
	return &MonotonicClock{source: source}
}

func (mc *MonotonicClock) Now() time.Time {
	mc.mtx.Lock()
	defer mc.mtx.Unlock()

	now := mc.source.Now()
	if now.Before(mc.last) {
		return mc.last
	}
	mc.last = now
	return now
}
