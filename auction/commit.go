package auction

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"energy_auction/types"
)

// Commit 提交密封出价并锁定押金
// 只在Bidding阶段(now < BiddingDeadline)接受；同一参与者每轮只能提交一次，先到者有效
// 押金先在账本锁定，成功后才记录承诺，失败时不留下任何状态
func (as *AuctionState) Commit(participant types.Address, hash common.Hash, escrow *uint256.Int) (*types.Commitment, error) {
	defer as.fireEvents()
	as.mtx.Lock()
	defer as.mtx.Unlock()

	now := as.now()
	if _, err := as.advance(now); err != nil {
		return nil, err
	}

	if as.Round.Phase != types.PhaseBidding {
		return nil, as.reject(types.ErrPhase, "commit only accepted during Bidding")
	}

	c := &types.Commitment{
		Round:       as.Round.ID,
		Participant: participant,
		Hash:        hash,
		Escrow:      types.AmountOrZero(escrow),
		Timestamp:   now,
	}
	if err := c.ValidateBasic(); err != nil {
		return nil, as.reject(types.KindOf(err), err.Error())
	}
	if as.Commits.Has(participant) {
		return nil, as.reject(types.ErrDuplicateCommitment, "first commitment wins")
	}

	if err := as.ledger.LockEscrow(as.Round.ID, participant, c.Escrow); err != nil {
		as.Logger.Error("lock escrow failed", "round", as.Round.ID, "participant", participant, "err", err)
		return nil, errors.Wrap(err, "lock escrow")
	}
	if err := as.Commits.Add(c); err != nil {
		// 上面已经检查过，不会发生
		as.Logger.Error("add commitment failed", "round", as.Round.ID, "participant", participant, "err", err)
		return nil, as.reject(types.ErrDuplicateCommitment, err.Error())
	}

	as.metrics.MarkCommit()
	as.queueEvent(EventNewCommit, c)
	as.Logger.Info("accept commitment", "round", as.Round.ID, "participant", participant,
		"escrow", types.FormatAmount(c.Escrow))
	return c, nil
}
