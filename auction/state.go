package auction

import (
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/events"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"

	atype "energy_auction/auction/types"
	"energy_auction/libs/metric"
	"energy_auction/scheduler"
	"energy_auction/state"
	"energy_auction/types"
)

// 拍卖状态机实现
// 单写者：所有修改状态的操作在一把锁下串行执行，不会阻塞等待其他操作
type AuctionState struct {
	service.BaseService

	// 时间来源
	clock scheduler.Clock

	// 结算执行器
	exec state.SettlementExecutor

	// 押金账本
	ledger state.Ledger

	// 状态机内部状态
	mtx sync.Mutex
	atype.RoundState
	state   state.State // 最后一轮结算后的账本状态
	lastNow time.Time   // 读到的最大时间，时钟回拨时停在这里

	eventSwitch   events.EventSwitch
	pendingEvents []firedEvent

	metrics *auctionMetric
}

type AuctionOption func(*AuctionState)

// SetClock 替换时间来源，测试使用
func SetClock(clock scheduler.Clock) AuctionOption {
	return func(as *AuctionState) {
		as.clock = clock
	}
}

// NewAuctionState 创建状态机，第一轮在当前时间开始
// 轮次编号从账本中最后结算的轮次继续，上次退出时未结算轮次的押金全额退还
func NewAuctionState(
	params types.Params,
	exec state.SettlementExecutor,
	ledger state.Ledger,
	options ...AuctionOption,
) (*AuctionState, error) {
	if err := params.ValidateBasic(); err != nil {
		return nil, err
	}

	as := &AuctionState{
		clock:       scheduler.NewMonotonicClock(scheduler.SystemClock{}),
		exec:        exec,
		ledger:      ledger,
		eventSwitch: events.NewEventSwitch(),
		metrics:     newAuctionMetric(),
	}
	as.BaseService = *service.NewBaseService(nil, "AUCTION", as)

	for _, opt := range options {
		opt(as)
	}

	if _, err := exec.RecoverEscrow(); err != nil {
		return nil, err
	}
	st, err := state.LoadState(ledger)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger state")
	}
	as.state = st

	round := scheduler.Genesis(st.NextRoundID(), as.now(), params)
	as.RoundState = atype.NewRoundState(round)
	as.metrics.MarkRound(round)
	if st.LastOutcome != nil {
		as.metrics.MarkSettled(st.LastOutcome)
	}
	return as, nil
}

func (as *AuctionState) SetLogger(logger log.Logger) {
	as.Logger = logger
}

func (as *AuctionState) OnStart() error {
	if err := as.eventSwitch.Start(); err != nil {
		return err
	}
	as.mtx.Lock()
	as.Logger.Info("auction started", "round", as.Round.ID, "phase", as.Round.Phase,
		"biddingDeadline", as.Round.BiddingDeadline, "revealDeadline", as.Round.RevealDeadline)
	as.mtx.Unlock()
	return nil
}

func (as *AuctionState) OnStop() {
	if err := as.eventSwitch.Stop(); err != nil {
		as.Logger.Error("failed trying to stop eventSwitch", "error", err)
	}
	as.Logger.Info("auction stopped.")
}

// MetricItem 状态机的metric
func (as *AuctionState) MetricItem() metric.MetricItem {
	return as.metrics
}

// ----- 时间驱动 -----

// Tick 完成所有到期的状态转移，由 scheduler.Ticker 调用
func (as *AuctionState) Tick() {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	if _, err := as.advance(as.now()); err != nil {
		as.Logger.Error("forced transition failed", "round", as.Round.ID, "phase", as.Round.Phase, "err", err)
	}
}

// NextDeadline 当前阶段结束的时间
func (as *AuctionState) NextDeadline() time.Time {
	as.mtx.Lock()
	defer as.mtx.Unlock()
	return scheduler.NextDeadline(as.Round, as.Round.Phase)
}

// now 持有锁时调用
func (as *AuctionState) now() time.Time {
	t := as.clock.Now()
	if t.Before(as.lastNow) {
		t = as.lastNow
	}
	as.lastNow = t
	return t
}

// advance 补齐now之前所有到期的状态转移，返回这次调用中结算出的结果
// 没有任何活动的阶段也不会被跳过：空闲多轮之后，每一轮都会依次经过Reveal、Settled(流拍)、Pending
// 结算写账本失败时停在Reveal，下一次调用重试
func (as *AuctionState) advance(now time.Time) ([]*types.Outcome, error) {
	var settled []*types.Outcome
	for {
		target := scheduler.PhaseAt(as.Round, now)
		switch as.Round.Phase {
		case types.PhaseBidding:
			if target == types.PhaseBidding {
				return settled, nil
			}
			as.enterReveal()

		case types.PhaseReveal:
			if target == types.PhaseBidding || target == types.PhaseReveal {
				return settled, nil
			}
			outcome, err := as.enterSettled()
			if err != nil {
				return settled, err
			}
			settled = append(settled, outcome)

		case types.PhaseSettled:
			if target == types.PhaseSettled {
				return settled, nil
			}
			as.enterPending()

		case types.PhasePending:
			as.enterNewRound()

		default:
			as.Logger.Error("unknown phase", "round", as.Round.ID, "phase", as.Round.Phase)
			return settled, nil
		}
	}
}

// enterReveal Bidding -> Reveal
func (as *AuctionState) enterReveal() {
	as.Round.Phase = types.PhaseReveal
	as.metrics.MarkPhase(types.PhaseReveal)
	as.Logger.Info("enter reveal phase", "round", as.Round.ID, "commits", as.Commits.Size(),
		"revealDeadline", as.Round.RevealDeadline)
}

// enterSettled Reveal -> Settled
// 结算结果写入账本成功之后才修改内存状态
func (as *AuctionState) enterSettled() (*types.Outcome, error) {
	outcome, err := as.exec.ApplyRound(as.Round, as.Commits.List(), as.Reveals.List())
	if err != nil {
		as.Logger.Error("settle round failed", "round", as.Round.ID, "err", err)
		return nil, err
	}

	as.Round.Outcome = outcome
	as.Round.Phase = types.PhaseSettled

	burned, err := as.ledger.Burned()
	if err != nil {
		as.Logger.Error("query burned total failed", "err", err)
		burned = nil
	}
	as.state = as.state.Update(outcome, burned)

	as.metrics.MarkPhase(types.PhaseSettled)
	as.metrics.MarkSettled(outcome)
	as.queueEvent(EventRoundSettled, outcome)
	return outcome, nil
}

// enterPending Settled -> Pending，本轮归档
func (as *AuctionState) enterPending() {
	as.Round.Phase = types.PhasePending
	as.metrics.MarkPhase(types.PhasePending)
	as.Logger.Debug("round archived", "round", as.Round.ID)
}

// enterNewRound Pending -> 下一轮Bidding
// 下一轮从上一轮的NextRoundStart开始，使用暂存的参数（如果有）
func (as *AuctionState) enterNewRound() {
	params := as.Round.Params
	if as.StagedParams != nil {
		params = *as.StagedParams
	}
	next := scheduler.Next(as.Round, params)
	as.RoundState = atype.NewRoundState(next)

	as.metrics.MarkRound(next)
	as.queueEvent(EventNewRound, next.Copy())
	as.Logger.Info("enter new round", "round", next.ID, "start", next.Start,
		"biddingDeadline", next.BiddingDeadline, "energy", next.Params.EnergyAmount)
}

// reject 生成带轮次和阶段的错误
func (as *AuctionState) reject(kind error, detail string) error {
	as.metrics.MarkRejected(kind)
	err := types.NewRoundError(kind, as.Round.ID, as.Round.Phase, detail)
	as.Logger.Debug("operation rejected", "err", err)
	return err
}

// ----- 查询 -----

// GetRoundState 返回当前轮次的快照
// 观察本身也会强制完成到期的状态转移
func (as *AuctionState) GetRoundState() (atype.RoundView, error) {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	now := as.now()
	_, err := as.advance(now)
	view := as.View(now, scheduler.NextDeadline(as.Round, as.Round.Phase))
	return view, err
}

// Outcome 查询某一轮的结算结果，没有结算的轮次返回(nil, nil)
func (as *AuctionState) Outcome(id types.RoundID) (*types.Outcome, error) {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	if _, err := as.advance(as.now()); err != nil {
		return nil, err
	}
	if id == as.Round.ID && as.Round.Outcome != nil {
		return as.Round.Outcome, nil
	}
	return as.ledger.LoadOutcome(id)
}

// History 最近limit轮的结算结果，从新到旧
func (as *AuctionState) History(limit int) ([]*types.Outcome, error) {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	if _, err := as.advance(as.now()); err != nil {
		return nil, err
	}
	return as.ledger.Outcomes(limit)
}

// State 账本状态的副本
func (as *AuctionState) State() state.State {
	as.mtx.Lock()
	defer as.mtx.Unlock()
	return as.state.Copy()
}

// Params 当前轮次使用的参数
func (as *AuctionState) Params() types.Params {
	as.mtx.Lock()
	defer as.mtx.Unlock()
	return as.Round.Params
}

func (as *AuctionState) Sinks() state.Sinks {
	return as.exec.Sinks()
}

// ----- 参数与资金 -----

// Reconfigure 指定下一轮的参数
// 一轮开始后参数不可变，所以只能在两轮之间（Settled阶段）调用
func (as *AuctionState) Reconfigure(params types.Params) error {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	if _, err := as.advance(as.now()); err != nil {
		return err
	}
	if as.Round.Phase != types.PhaseSettled {
		return as.reject(types.ErrPhase, "parameters can only be changed between rounds")
	}
	if err := params.ValidateBasic(); err != nil {
		return as.reject(types.ErrInvalidConfiguration, err.Error())
	}
	staged := params
	as.StagedParams = &staged
	as.Logger.Info("parameters staged for next round", "round", as.Round.ID.Next(),
		"biddingTime", params.BiddingTime, "revealTime", params.RevealTime,
		"nextRoundDelay", params.NextRoundDelay, "energy", params.EnergyAmount)
	return nil
}

// Balance 参与者可以提取的余额
func (as *AuctionState) Balance(participant types.Address) (*uint256.Int, error) {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	if _, err := as.advance(as.now()); err != nil {
		return nil, err
	}
	return as.ledger.Balance(participant)
}

// Withdraw 提取退款和收益
func (as *AuctionState) Withdraw(participant types.Address) (*uint256.Int, error) {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	if _, err := as.advance(as.now()); err != nil {
		return nil, err
	}
	amount, err := as.ledger.Withdraw(participant)
	if err != nil {
		return nil, err
	}
	if !amount.IsZero() {
		as.Logger.Info("withdraw", "participant", participant, "amount", types.FormatAmount(amount))
	}
	return amount, nil
}
