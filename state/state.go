package state

import (
	"github.com/holiman/uint256"

	"energy_auction/types"
)

// LoadState 从账本恢复进程重启前的状态
func LoadState(ledger Ledger) (State, error) {
	last, err := ledger.LastSettledRound()
	if err != nil {
		return State{}, err
	}
	state := State{LastSettledRound: last}
	if last != types.RoundIDZero {
		if state.LastOutcome, err = ledger.LoadOutcome(last); err != nil {
			return State{}, err
		}
	}
	if state.Burned, err = ledger.Burned(); err != nil {
		return State{}, err
	}
	return state, nil
}

// State 账本上已结算部分的摘要
// 每结算一轮更新一次
type State struct {
	LastSettledRound types.RoundID
	LastOutcome      *types.Outcome
	Burned           *uint256.Int
}

// NextRoundID 下一轮的编号，轮次编号跨进程重启连续
func (state State) NextRoundID() types.RoundID {
	if state.LastSettledRound < types.GenesisRoundID {
		return types.GenesisRoundID
	}
	return state.LastSettledRound.Next()
}

// Update 返回记录了outcome之后的状态
func (state State) Update(outcome *types.Outcome, burned *uint256.Int) State {
	newState := state.Copy()
	newState.LastSettledRound = outcome.Round
	newState.LastOutcome = outcome
	if burned != nil {
		newState.Burned = types.AmountOrZero(burned)
	}
	return newState
}

func (state *State) Copy() State {
	return State{
		LastSettledRound: state.LastSettledRound,
		LastOutcome:      state.LastOutcome,
		Burned:           types.AmountOrZero(state.Burned),
	}
}
