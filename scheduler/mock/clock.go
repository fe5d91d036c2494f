package mock

import (
	"sync"
	"time"

	"energy_auction/scheduler"
)

// Clock 手动推进的时钟，用于测试
type Clock struct {
	mtx sync.Mutex
	now time.Time
}

var _ scheduler.Clock = (*Clock)(nil)

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now
}

// Advance 向前推进d，d为负时忽略
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return c.now
}

// Set 直接设置时间，用于模拟系统时钟回拨
func (c *Clock) Set(t time.Time) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = t
}
