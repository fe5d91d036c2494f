package auction

import (
	"energy_auction/types"
)

// Finalize 任何人都可以调用的结算入口
// 在RevealDeadline之后第一次调用时结算本轮并返回结果；如果补齐状态时结算了多轮，返回其中最早的一轮
// 本轮已经结算过时返回 ErrAlreadySettled，不会重复支付；RevealDeadline之前调用返回 ErrPhase
func (as *AuctionState) Finalize() (*types.Outcome, error) {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	settled, err := as.advance(as.now())
	if err != nil {
		return nil, err
	}
	if len(settled) > 0 {
		return settled[0], nil
	}

	switch as.Round.Phase {
	case types.PhaseSettled:
		return nil, as.reject(types.ErrAlreadySettled, "round settled at "+as.Round.RevealDeadline.String())
	default:
		return nil, as.reject(types.ErrPhase, "reveal deadline not reached")
	}
}
