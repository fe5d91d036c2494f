package auction

import (
	"github.com/tendermint/tendermint/libs/events"
)

// 状态机对外发布的事件
const (
	EventNewCommit    = "NewCommit"    // data: *types.Commitment
	EventNewReveal    = "NewReveal"    // data: *types.Reveal
	EventRoundSettled = "RoundSettled" // data: *types.Outcome
	EventNewRound     = "NewRound"     // data: types.Round
)

type firedEvent struct {
	event string
	data  events.EventData
}

// AddListener 订阅状态机事件
// 回调在状态机释放锁之后调用，可以在回调里调用状态机的方法
func (as *AuctionState) AddListener(listenerID, event string, cb events.EventCallback) error {
	return as.eventSwitch.AddListenerForEvent(listenerID, event, cb)
}

func (as *AuctionState) RemoveListener(listenerID string) {
	as.eventSwitch.RemoveListener(listenerID)
}

// queueEvent 持有锁时调用
func (as *AuctionState) queueEvent(event string, data events.EventData) {
	as.pendingEvents = append(as.pendingEvents, firedEvent{event: event, data: data})
}

// fireEvents 不能持有锁
func (as *AuctionState) fireEvents() {
	as.mtx.Lock()
	pending := as.pendingEvents
	as.pendingEvents = nil
	as.mtx.Unlock()

	for _, e := range pending {
		as.eventSwitch.FireEvent(e.event, e.data)
	}
}
