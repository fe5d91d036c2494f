package rpc

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"energy_auction/types"
)

type ResultCommit struct {
	Round       types.RoundID `json:"round"`
	Participant types.Address `json:"participant"`
	Commitment  string        `json:"commitment"`
	Escrow      string        `json:"escrow"`
	Timestamp   time.Time     `json:"timestamp"`
}

type ResultReveal struct {
	Round       types.RoundID `json:"round"`
	Participant types.Address `json:"participant"`
	Bid         string        `json:"bid"`
	Timestamp   time.Time     `json:"timestamp"`
}

type ResultParams struct {
	BiddingTime    string `json:"bidding_time"`
	RevealTime     string `json:"reveal_time"`
	NextRoundDelay string `json:"next_round_delay"`
	EnergyAmount   uint64 `json:"energy_amount"`
}

type ResultRoundState struct {
	Round           types.RoundID   `json:"round"`
	Phase           types.Phase     `json:"phase"`
	Params          ResultParams    `json:"params"`
	Start           time.Time       `json:"start"`
	BiddingDeadline time.Time       `json:"bidding_deadline"`
	RevealDeadline  time.Time       `json:"reveal_deadline"`
	NextRoundStart  time.Time       `json:"next_round_start"`
	NextDeadline    time.Time       `json:"next_deadline"`
	Now             time.Time       `json:"now"`
	Commits         int             `json:"commits"`
	Reveals         int             `json:"reveals"`
	Bidders         []types.Address `json:"bidders"`
	Revealed        []types.Address `json:"revealed"`
	Outcome         *types.Outcome  `json:"outcome,omitempty"`
	StagedParams    *ResultParams   `json:"staged_params,omitempty"`
}

func Commit(ctx *rpctypes.Context, participant, commitment, escrow string) (*ResultCommit, error) {
	addr, err := types.ParseAddress(participant)
	if err != nil {
		return nil, err
	}
	hash, err := parseHash(commitment)
	if err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(escrow)
	if err != nil {
		return nil, err
	}

	c, err := env.Auction.Commit(addr, hash, amount)
	if err != nil {
		return nil, err
	}
	return &ResultCommit{
		Round:       c.Round,
		Participant: c.Participant,
		Commitment:  c.Hash.Hex(),
		Escrow:      types.FormatAmount(c.Escrow),
		Timestamp:   c.Timestamp,
	}, nil
}

func Reveal(ctx *rpctypes.Context, participant, bid, nonce string) (*ResultReveal, error) {
	addr, err := types.ParseAddress(participant)
	if err != nil {
		return nil, err
	}
	value, err := types.ParseAmount(bid)
	if err != nil {
		return nil, err
	}

	r, err := env.Auction.Reveal(addr, value, nonce)
	if err != nil {
		return nil, err
	}
	return &ResultReveal{
		Round:       r.Round,
		Participant: r.Participant,
		Bid:         types.FormatAmount(r.Bid),
		Timestamp:   r.Timestamp,
	}, nil
}

// Finalize 返回这次调用结算的轮次结果
func Finalize(ctx *rpctypes.Context) (*types.Outcome, error) {
	return env.Auction.Finalize()
}

func RoundState(ctx *rpctypes.Context) (*ResultRoundState, error) {
	view, err := env.Auction.GetRoundState()
	if err != nil {
		return nil, err
	}

	r := view.Round
	result := &ResultRoundState{
		Round:           r.ID,
		Phase:           r.Phase,
		Params:          makeResultParams(r.Params),
		Start:           r.Start,
		BiddingDeadline: r.BiddingDeadline,
		RevealDeadline:  r.RevealDeadline,
		NextRoundStart:  r.NextRoundStart,
		NextDeadline:    view.NextDeadline,
		Now:             view.Now,
		Commits:         view.Commits,
		Reveals:         view.Reveals,
		Bidders:         view.Bidders,
		Revealed:        view.Revealed,
		Outcome:         r.Outcome,
	}
	if view.StagedParams != nil {
		staged := makeResultParams(*view.StagedParams)
		result.StagedParams = &staged
	}
	return result, nil
}

func makeResultParams(p types.Params) ResultParams {
	return ResultParams{
		BiddingTime:    p.BiddingTime.String(),
		RevealTime:     p.RevealTime.String(),
		NextRoundDelay: p.NextRoundDelay.String(),
		EnergyAmount:   p.EnergyAmount,
	}
}

// parseHash 解析0x开头的32字节hash
func parseHash(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	bz, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid commitment %q: %v", s, err)
	}
	if len(bz) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid commitment length %d, expected %d", len(bz), common.HashLength)
	}
	return common.BytesToHash(bz), nil
}
