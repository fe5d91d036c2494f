package scheduler

import (
	"time"

	"energy_auction/types"
)

// 轮次的时间表完全由截止时间决定，与调用到达的时刻无关
// 所有观察者对同一轮计算出的阶段边界都一致
//
//	Start            BiddingDeadline      RevealDeadline      NextRoundStart
//	  |---- Bidding ----|----- Reveal -----|----- Settled -----|-> Pending -> 下一轮Bidding

// Genesis 在t0创建编号为id的一轮
func Genesis(id types.RoundID, t0 time.Time, params types.Params) types.Round {
	biddingDeadline := t0.Add(params.BiddingTime)
	revealDeadline := biddingDeadline.Add(params.RevealTime)
	return types.Round{
		ID:              id,
		Params:          params,
		Start:           t0,
		BiddingDeadline: biddingDeadline,
		RevealDeadline:  revealDeadline,
		NextRoundStart:  revealDeadline.Add(params.NextRoundDelay),
		Phase:           types.PhaseBidding,
	}
}

// Next 紧接着prev的下一轮，开始时间锚定在prev.NextRoundStart
func Next(prev types.Round, params types.Params) types.Round {
	return Genesis(prev.ID.Next(), prev.NextRoundStart, params)
}

// PhaseAt 纯函数：now相对截止时间所处的阶段
func PhaseAt(r types.Round, now time.Time) types.Phase {
	switch {
	case now.Before(r.BiddingDeadline):
		return types.PhaseBidding
	case now.Before(r.RevealDeadline):
		return types.PhaseReveal
	case now.Before(r.NextRoundStart):
		return types.PhaseSettled
	default:
		return types.PhasePending
	}
}

// NextDeadline 返回phase结束的时间点
func NextDeadline(r types.Round, phase types.Phase) time.Time {
	switch phase {
	case types.PhaseBidding:
		return r.BiddingDeadline
	case types.PhaseReveal:
		return r.RevealDeadline
	default:
		return r.NextRoundStart
	}
}
