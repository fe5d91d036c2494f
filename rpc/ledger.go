package rpc

import (
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"energy_auction/types"
)

type ResultBalance struct {
	Participant types.Address `json:"participant"`
	Amount      string        `json:"amount"`
}

// Balance 可提取的退款和收益
func Balance(ctx *rpctypes.Context, participant string) (*ResultBalance, error) {
	addr, err := types.ParseAddress(participant)
	if err != nil {
		return nil, err
	}
	amount, err := env.Auction.Balance(addr)
	if err != nil {
		return nil, err
	}
	return &ResultBalance{Participant: addr, Amount: types.FormatAmount(amount)}, nil
}

// Withdraw 提取全部余额，余额为0时返回0
func Withdraw(ctx *rpctypes.Context, participant string) (*ResultBalance, error) {
	addr, err := types.ParseAddress(participant)
	if err != nil {
		return nil, err
	}
	amount, err := env.Auction.Withdraw(addr)
	if err != nil {
		return nil, err
	}
	return &ResultBalance{Participant: addr, Amount: types.FormatAmount(amount)}, nil
}
