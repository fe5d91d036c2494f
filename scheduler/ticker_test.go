package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func getTestLogWithDebug() log.Logger {
	return log.NewFilter(log.TestingLogger(), log.AllowDebug())
}

// 每次Tick把截止时间向后推一个interval
type intervalTarget struct {
	mtx      sync.Mutex
	interval time.Duration
	deadline time.Time
	ticks    int
	stuck    bool // 为true时Tick不推动截止时间
}

func newIntervalTarget(interval time.Duration) *intervalTarget {
	return &intervalTarget{interval: interval, deadline: time.Now().Add(interval)}
}

func (it *intervalTarget) NextDeadline() time.Time {
	it.mtx.Lock()
	defer it.mtx.Unlock()
	return it.deadline
}

func (it *intervalTarget) Tick() {
	it.mtx.Lock()
	defer it.mtx.Unlock()
	it.ticks++
	if !it.stuck {
		it.deadline = it.deadline.Add(it.interval)
	}
}

func (it *intervalTarget) setDeadline(d time.Time) {
	it.mtx.Lock()
	defer it.mtx.Unlock()
	it.deadline = d
}

func (it *intervalTarget) tickCount() int {
	it.mtx.Lock()
	defer it.mtx.Unlock()
	return it.ticks
}

// 测试Ticker在每个截止时间到达后都会触发Tick
func TestTickerFiresAtDeadlines(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	target := newIntervalTarget(20 * time.Millisecond)
	ticker := NewTicker(SystemClock{}, target)
	ticker.SetLogger(getTestLogWithDebug())
	require.NoError(t, ticker.Start())

	for i := 0; i < 3; i++ {
		select {
		case <-ticker.Chan():
		case <-time.After(time.Second):
			t.Fatal("Tick没有触发")
		}
	}
	require.NoError(t, ticker.Stop())
	assert.GreaterOrEqual(t, target.tickCount(), 3)
}

// 测试Rearm：先设置一个很远的截止时间，然后提前
func TestTickerRearm(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	target := newIntervalTarget(time.Hour)
	ticker := NewTicker(SystemClock{}, target)
	ticker.SetLogger(log.TestingLogger())
	require.NoError(t, ticker.Start())

	target.setDeadline(time.Now().Add(10 * time.Millisecond))
	ticker.Rearm()

	select {
	case <-ticker.Chan():
	case <-time.After(time.Second):
		t.Fatal("Rearm后Tick没有按新的截止时间触发")
	}
	require.NoError(t, ticker.Stop())
}

// Tick不推进截止时间时按retryInterval重试，而不是空转
func TestTickerBacksOffWhenStuck(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	target := newIntervalTarget(5 * time.Millisecond)
	target.stuck = true
	ticker := NewTicker(SystemClock{}, target)
	ticker.SetLogger(log.TestingLogger())
	require.NoError(t, ticker.Start())

	time.Sleep(retryInterval / 2)
	require.NoError(t, ticker.Stop())
	assert.Equal(t, 1, target.tickCount())
}
