package state

import (
	"github.com/holiman/uint256"

	"energy_auction/types"
)

// Ledger 押金账本和结算结果的持久化接口
type Ledger interface {
	// LockEscrow 在承诺时锁定押金，同一轮同一参与者只能锁定一次
	LockEscrow(round types.RoundID, participant types.Address, amount *uint256.Int) error

	// Escrow 查询锁定的押金，没有时返回0
	Escrow(round types.RoundID, participant types.Address) (*uint256.Int, error)

	// Settle 原子地写入结算结果和所有转账，并释放该轮的押金
	// 同一轮重复结算返回 types.ErrAlreadySettled
	Settle(outcome *types.Outcome, transfers []Transfer) error

	// ReleaseStranded 退还所有未结算轮次遗留的押金，返回退款记录
	ReleaseStranded() ([]Transfer, error)

	// Balance 参与者可提取的余额
	Balance(addr types.Address) (*uint256.Int, error)

	// Withdraw 提取全部余额
	Withdraw(addr types.Address) (*uint256.Int, error)

	// Burned 累计销毁的金额
	Burned() (*uint256.Int, error)

	// LoadOutcome 按轮次读取归档的结果，不存在时返回(nil, nil)
	LoadOutcome(round types.RoundID) (*types.Outcome, error)

	// LastSettledRound 最后一个结算的轮次，没有时返回 types.RoundIDZero
	LastSettledRound() (types.RoundID, error)

	// Outcomes 按轮次从新到旧返回最多limit个归档结果
	Outcomes(limit int) ([]*types.Outcome, error)

	Close() error
}
