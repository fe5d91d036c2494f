package types

import (
	"time"

	types "energy_auction/types"
)

// RoundState 拍卖状态机内部的状态
type RoundState struct {
	types.Round

	Commits *CommitSet // 这一轮收到的承诺
	Reveals *RevealSet // 这一轮通过校验的揭示

	StagedParams *types.Params // 下一轮生效的参数，只能在Settled阶段设置
}

// NewRoundState 进入一个新的轮次，所有轮内状态清空
func NewRoundState(round types.Round) RoundState {
	return RoundState{
		Round:   round,
		Commits: NewCommitSet(),
		Reveals: NewRevealSet(),
	}
}

// View 生成对外的只读快照
func (rs *RoundState) View(now time.Time, nextDeadline time.Time) RoundView {
	view := RoundView{
		Round:        rs.Round.Copy(),
		Commits:      rs.Commits.Size(),
		Reveals:      rs.Reveals.Size(),
		Bidders:      rs.Commits.Participants(),
		Revealed:     rs.Reveals.Participants(),
		NextDeadline: nextDeadline,
		Now:          now,
	}
	if rs.StagedParams != nil {
		staged := *rs.StagedParams
		view.StagedParams = &staged
	}
	return view
}

// RoundView 当前轮次的只读快照
type RoundView struct {
	Round        types.Round     `json:"round"`
	Commits      int             `json:"commits"`
	Reveals      int             `json:"reveals"`
	Bidders      []types.Address `json:"bidders"`
	Revealed     []types.Address `json:"revealed"`
	NextDeadline time.Time       `json:"next_deadline"`
	Now          time.Time       `json:"now"`
	StagedParams *types.Params   `json:"staged_params,omitempty"`
}

func (v RoundView) Phase() types.Phase {
	return v.Round.Phase
}
