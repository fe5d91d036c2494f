package state

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"

	"energy_auction/types"
)

type SettlementExecutor interface {
	// ApplyRound 计算一轮的结果并把资金去向原子地写入账本
	// 返回错误时账本没有任何变化
	ApplyRound(round types.Round, commits []*types.Commitment, reveals []*types.Reveal) (*types.Outcome, error)

	// RecoverEscrow 退还上次退出时未结算轮次的押金
	RecoverEscrow() ([]Transfer, error)

	Sinks() Sinks

	SetLogger(logger log.Logger)
}

func NewSettlementExec(ledger Ledger, sinks Sinks) SettlementExecutor {
	return &settlementExecutor{
		ledger: ledger,
		sinks:  sinks,
		logger: log.NewNopLogger(),
	}
}

type settlementExecutor struct {
	ledger Ledger
	sinks  Sinks

	logger log.Logger
}

// SetLogger implements SettlementExecutor
func (exec *settlementExecutor) SetLogger(logger log.Logger) {
	exec.logger = logger
}

// Sinks implements SettlementExecutor
func (exec *settlementExecutor) Sinks() Sinks {
	return exec.sinks
}

// ApplyRound implements SettlementExecutor
// 结果计算和资金处理分开：前者是纯函数，后者由账本在一个batch里完成
func (exec *settlementExecutor) ApplyRound(
	round types.Round,
	commits []*types.Commitment,
	reveals []*types.Reveal,
) (*types.Outcome, error) {
	outcome := ComputeOutcome(round, commits, reveals)

	escrows := make(map[types.Address]*uint256.Int, len(commits))
	for _, c := range commits {
		escrows[c.Participant] = types.AmountOrZero(c.Escrow)
	}

	transfers, err := PlanTransfers(outcome, escrows, exec.sinks)
	if err != nil {
		return nil, errors.Wrapf(err, "plan transfers for round %v", round.ID)
	}

	for _, t := range transfers {
		exec.logger.Debug("transfer", "round", round.ID, "transfer", t)
	}

	if err := exec.ledger.Settle(outcome, transfers); err != nil {
		return nil, errors.Wrapf(err, "settle round %v", round.ID)
	}

	if outcome.HasWinner() {
		exec.logger.Info("round settled", "round", round.ID, "winner", outcome.Winner,
			"price", types.FormatAmount(outcome.ClearingPrice), "forfeited", len(outcome.Forfeited))
	} else {
		exec.logger.Info("round settled without winner", "round", round.ID, "forfeited", len(outcome.Forfeited))
	}
	return outcome, nil
}

// RecoverEscrow implements SettlementExecutor
func (exec *settlementExecutor) RecoverEscrow() ([]Transfer, error) {
	refunds, err := exec.ledger.ReleaseStranded()
	if err != nil {
		return nil, errors.Wrap(err, "release stranded escrow")
	}
	for _, t := range refunds {
		exec.logger.Info("refund stranded escrow", "round", t.Round, "participant", t.From, "amount", types.FormatAmount(t.Amount))
	}
	return refunds, nil
}
