package types

import (
	"fmt"
	"time"
)

// Params 每一轮拍卖的参数，一轮开始后不可修改，只能在两轮之间重新指定
type Params struct {
	BiddingTime    time.Duration `json:"bidding_time"`
	RevealTime     time.Duration `json:"reveal_time"`
	NextRoundDelay time.Duration `json:"next_round_delay"`
	EnergyAmount   uint64        `json:"energy_amount"` // 本轮拍卖的电量，kWh
}

func (p Params) ValidateBasic() error {
	if p.BiddingTime <= 0 {
		return InvalidConfiguration("bidding time must be positive, got %v", p.BiddingTime)
	}
	if p.RevealTime <= 0 {
		return InvalidConfiguration("reveal time must be positive, got %v", p.RevealTime)
	}
	if p.NextRoundDelay <= 0 {
		return InvalidConfiguration("next round delay must be positive, got %v", p.NextRoundDelay)
	}
	if p.EnergyAmount == 0 {
		return InvalidConfiguration("energy amount must be positive")
	}
	return nil
}

// Cycle 一轮从开始到下一轮开始的总时长
func (p Params) Cycle() time.Duration {
	return p.BiddingTime + p.RevealTime + p.NextRoundDelay
}

// Round - 一轮完整的 Bidding -> Reveal -> Settled 周期
// 所有的截止时间在创建时确定
type Round struct {
	ID              RoundID   `json:"id"`
	Params          Params    `json:"params"`
	Start           time.Time `json:"start"`
	BiddingDeadline time.Time `json:"bidding_deadline"`
	RevealDeadline  time.Time `json:"reveal_deadline"`
	NextRoundStart  time.Time `json:"next_round_start"`
	Phase           Phase     `json:"phase"`

	// 结算后填充，之后不可变
	Outcome *Outcome `json:"outcome,omitempty"`
}

// Copy 返回快照，Outcome结算后不可变所以共享指针
func (r *Round) Copy() Round {
	return *r
}

func (r *Round) String() string {
	return fmt.Sprintf("Round{%v %v bid<%v reveal<%v next@%v}",
		r.ID, r.Phase, r.BiddingDeadline.Format(time.RFC3339), r.RevealDeadline.Format(time.RFC3339), r.NextRoundStart.Format(time.RFC3339))
}
