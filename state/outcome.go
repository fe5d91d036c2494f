package state

import (
	"sort"

	"energy_auction/types"
)

// ComputeOutcome 纯函数，按第二价格规则计算一轮的结果
//  1. 揭示的出价按出价从高到低排序，出价相同时地址小的排在前面
//  2. 排第一的为赢家
//  3. 成交价为排第二的出价；只有一个有效揭示时成交价为赢家自己的出价
//  4. 提交了承诺但没有揭示的参与者记为forfeited
//  5. 出价超过自己押金的揭示不参与排名，记为underfunded
//
// 没有任何揭示时本轮流拍，这是合法的结果而不是错误
func ComputeOutcome(round types.Round, commits []*types.Commitment, reveals []*types.Reveal) *types.Outcome {
	committed := make(map[types.Address]*types.Commitment, len(commits))
	bidders := make([]types.Address, 0, len(commits))
	for _, c := range commits {
		if _, ok := committed[c.Participant]; ok {
			continue
		}
		committed[c.Participant] = c
		bidders = append(bidders, c.Participant)
	}
	sortAddresses(bidders)

	revealed := make(map[types.Address]struct{}, len(reveals))
	ranked := make([]types.RevealedBid, 0, len(reveals))
	underfunded := make([]types.Address, 0)
	for _, r := range reveals {
		c, ok := committed[r.Participant]
		if !ok {
			continue
		}
		if _, ok := revealed[r.Participant]; ok {
			continue
		}
		revealed[r.Participant] = struct{}{}
		bid := types.AmountOrZero(r.Bid)
		if bid.Gt(types.AmountOrZero(c.Escrow)) {
			underfunded = append(underfunded, r.Participant)
			continue
		}
		ranked = append(ranked, types.RevealedBid{Participant: r.Participant, Bid: bid})
	}
	sortAddresses(underfunded)
	sort.SliceStable(ranked, func(i, j int) bool {
		if cmp := ranked[i].Bid.Cmp(ranked[j].Bid); cmp != 0 {
			return cmp > 0
		}
		return ranked[i].Participant.Less(ranked[j].Participant)
	})

	forfeited := make([]types.Address, 0)
	for _, addr := range bidders {
		if _, ok := revealed[addr]; !ok {
			forfeited = append(forfeited, addr)
		}
	}

	outcome := &types.Outcome{
		Round:         round.ID,
		EnergyAmount:  round.Params.EnergyAmount,
		WinningBid:    types.ZeroAmount(),
		ClearingPrice: types.ZeroAmount(),
		Bidders:       bidders,
		Revealed:      ranked,
		Forfeited:     forfeited,
		Underfunded:   underfunded,
		SettledAt:     round.RevealDeadline,
	}

	switch len(ranked) {
	case 0:
		// 流拍
	case 1:
		winner := ranked[0].Participant
		outcome.Winner = &winner
		outcome.WinningBid = types.AmountOrZero(ranked[0].Bid)
		outcome.ClearingPrice = types.AmountOrZero(ranked[0].Bid)
	default:
		winner := ranked[0].Participant
		outcome.Winner = &winner
		outcome.WinningBid = types.AmountOrZero(ranked[0].Bid)
		outcome.ClearingPrice = types.AmountOrZero(ranked[1].Bid)
	}
	return outcome
}

func sortAddresses(addrs []types.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Less(addrs[j])
	})
}
