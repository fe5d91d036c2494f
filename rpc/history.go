package rpc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"energy_auction/libs/utils"
	"energy_auction/types"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type ResultHistory struct {
	Outcomes []*types.Outcome `json:"outcomes"`
	Summary  PriceSummary     `json:"summary"`
}

// PriceSummary 成交价统计，只统计有成交的轮次
type PriceSummary struct {
	Rounds      int    `json:"rounds"`
	Traded      int    `json:"traded"`
	EnergySold  uint64 `json:"energy_sold"`
	MaxPrice    string `json:"max_price"`
	MinPrice    string `json:"min_price"`
	MedianPrice string `json:"median_price"`
	AvgPrice    string `json:"avg_price"`
	Turnover    string `json:"turnover"`
}

// Round 查询已结算轮次的结果
func Round(ctx *rpctypes.Context, id string) (*types.Outcome, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n < int64(types.GenesisRoundID) {
		return nil, fmt.Errorf("invalid round id %q", id)
	}

	outcome, err := env.Auction.Outcome(types.RoundID(n))
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, fmt.Errorf("round %v is not settled", n)
	}
	return outcome, nil
}

// History 最近limit轮的结果，从新到旧
func History(ctx *rpctypes.Context, limit string) (*ResultHistory, error) {
	n := defaultHistoryLimit
	if limit = strings.TrimSpace(limit); limit != "" {
		var err error
		if n, err = strconv.Atoi(limit); err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid limit %q", limit)
		}
	}
	if n > maxHistoryLimit {
		n = maxHistoryLimit
	}

	outcomes, err := env.Auction.History(n)
	if err != nil {
		return nil, err
	}
	return &ResultHistory{
		Outcomes: outcomes,
		Summary:  SummarizePrices(outcomes),
	}, nil
}

func SummarizePrices(outcomes []*types.Outcome) PriceSummary {
	summary := PriceSummary{Rounds: len(outcomes)}

	prices := make([]*uint256.Int, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.HasWinner() {
			continue
		}
		prices = append(prices, o.ClearingPrice)
		summary.EnergySold += o.EnergyAmount
	}
	summary.Traded = len(prices)
	summary.MaxPrice = types.FormatAmount(utils.Max(prices...))
	summary.MinPrice = types.FormatAmount(utils.Min(prices...))
	summary.MedianPrice = types.FormatAmount(utils.Median(prices...))
	summary.AvgPrice = types.FormatAmount(utils.Avg(prices...))
	summary.Turnover = types.FormatAmount(utils.Sum(prices...))
	return summary
}
