package scheduler

import (
	"time"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"
)

const (
	// 截止时间没有前进时（例如结算写账本失败）的重试间隔
	retryInterval = 500 * time.Millisecond
)

var _ service.Service = (*Ticker)(nil)

// Target 被Ticker驱动的对象，一般是拍卖状态机
type Target interface {
	// 下一个需要强制状态转移的时间点
	NextDeadline() time.Time

	// 到达截止时间后调用，完成到期的状态转移
	Tick()
}

// Ticker 在截止时间到达时主动推进状态机
// 状态机本身在每次调用时都会惰性完成转移，Ticker不是正确性所必需的
// 它只是让没有外部调用时结算也能按时发生
type Ticker struct {
	service.BaseService

	clock  Clock
	target Target

	resetCh chan struct{}
	tickCh  chan time.Time // 每次Tick之后写入，测试用
}

func NewTicker(clock Clock, target Target) *Ticker {
	if clock == nil {
		clock = SystemClock{}
	}
	t := &Ticker{
		clock:   clock,
		target:  target,
		resetCh: make(chan struct{}, 1),
		tickCh:  make(chan time.Time, 1),
	}
	t.BaseService = *service.NewBaseService(nil, "TICKER", t)
	return t
}

func (t *Ticker) SetLogger(logger log.Logger) {
	t.Logger = logger
}

func (t *Ticker) OnStart() error {
	go t.timeoutRoutine()
	return nil
}

func (t *Ticker) OnStop() {}

// Rearm 让Ticker重新读取NextDeadline，不会阻塞
// 不能叫Reset，否则与service.Service的Reset() error冲突
func (t *Ticker) Rearm() {
	select {
	case t.resetCh <- struct{}{}:
	default:
	}
}

// Chan 每次Tick完成后返回Tick发生的时间
func (t *Ticker) Chan() <-chan time.Time {
	return t.tickCh
}

func (t *Ticker) timeoutRoutine() {
	t.Logger.Debug("ticker routine starts.")
	var lastFired time.Time

	for {
		deadline := t.target.NextDeadline()
		wait := deadline.Sub(t.clock.Now())
		if !lastFired.IsZero() && !deadline.After(lastFired) && wait < retryInterval {
			// 上一次Tick没有推动截止时间
			wait = retryInterval
		}
		if wait < 0 {
			wait = 0
		}
		t.Logger.Debug("ticker armed", "deadline", deadline, "wait", wait)

		timer := time.NewTimer(wait)
		select {
		case <-t.Quit():
			timer.Stop()
			t.Logger.Debug("ticker routine quit.")
			return
		case <-t.resetCh:
			timer.Stop()
		case <-timer.C:
			lastFired = deadline
			t.target.Tick()
			select {
			case t.tickCh <- t.clock.Now():
			default:
			}
		}
	}
}
