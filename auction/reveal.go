package auction

import (
	"github.com/holiman/uint256"

	"energy_auction/types"
)

// Reveal 公开出价和nonce
// 检查顺序：阶段、是否有承诺、是否已经揭示、hash是否一致
// 出价超过押金的揭示仍然成功，结算时不参与排名，押金全额退还
func (as *AuctionState) Reveal(participant types.Address, bid *uint256.Int, nonce string) (*types.Reveal, error) {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	now := as.now()
	if _, err := as.advance(now); err != nil {
		return nil, err
	}

	if as.Round.Phase != types.PhaseReveal {
		return nil, as.reject(types.ErrPhase, "reveal only accepted during Reveal")
	}

	c := as.Commits.Get(participant)
	if c == nil {
		return nil, as.reject(types.ErrNoCommitment, participant.Hex())
	}
	if as.Reveals.Has(participant) {
		return nil, as.reject(types.ErrAlreadyRevealed, participant.Hex())
	}

	r := &types.Reveal{
		Round:       as.Round.ID,
		Participant: participant,
		Bid:         types.AmountOrZero(bid),
		Nonce:       nonce,
		Timestamp:   now,
	}
	if !r.Matches(c) {
		return nil, as.reject(types.ErrHashMismatch, participant.Hex())
	}
	if r.Bid.Gt(c.Escrow) {
		as.Logger.Info("revealed bid exceeds escrow, excluded from ranking", "round", as.Round.ID,
			"participant", participant, "bid", types.FormatAmount(r.Bid), "escrow", types.FormatAmount(c.Escrow))
	}

	if err := as.Reveals.Add(r); err != nil {
		return nil, as.reject(types.ErrAlreadyRevealed, err.Error())
	}

	as.metrics.MarkReveal()
	as.queueEvent(EventNewReveal, r)
	as.Logger.Info("accept reveal", "round", as.Round.ID, "participant", participant,
		"bid", types.FormatAmount(r.Bid))
	return r, nil
}
