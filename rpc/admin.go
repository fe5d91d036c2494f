package rpc

import (
	"strconv"
	"strings"
	"time"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"energy_auction/types"
)

// Reconfigure 指定下一轮的参数，只能在两轮之间调用
// 时长以秒为单位，energy_amount为空时沿用当前电量
func Reconfigure(ctx *rpctypes.Context, biddingTime, revealTime, nextRoundDelay, energyAmount string) (*ResultParams, error) {
	params := env.Auction.Params()

	var err error
	if params.BiddingTime, err = parseSeconds("bidding_time", biddingTime); err != nil {
		return nil, err
	}
	if params.RevealTime, err = parseSeconds("reveal_time", revealTime); err != nil {
		return nil, err
	}
	if params.NextRoundDelay, err = parseSeconds("next_round_delay", nextRoundDelay); err != nil {
		return nil, err
	}
	if energyAmount = strings.TrimSpace(energyAmount); energyAmount != "" {
		if params.EnergyAmount, err = strconv.ParseUint(energyAmount, 10, 64); err != nil {
			return nil, types.InvalidConfiguration("energy_amount %q: %v", energyAmount, err)
		}
	}

	if err := env.Auction.Reconfigure(params); err != nil {
		return nil, err
	}
	result := makeResultParams(params)
	return &result, nil
}

func parseSeconds(name, s string) (time.Duration, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, types.InvalidConfiguration("%s %q is not a number of seconds", name, s)
	}
	if n <= 0 {
		return 0, types.InvalidConfiguration("%s must be positive, got %d", name, n)
	}
	return time.Duration(n) * time.Second, nil
}
