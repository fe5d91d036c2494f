package rpc

import (
	"time"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"energy_auction/types"
)

type ResultStatus struct {
	Instance   string    `json:"instance"`
	Version    string    `json:"version"`
	DeployedAt time.Time `json:"deployed_at"`

	Params ResultParams `json:"params"`

	ProceedsAddress types.Address  `json:"proceeds_address"`
	ForfeitSink     string         `json:"forfeit_sink"`
	TreasuryAddress *types.Address `json:"treasury_address,omitempty"`

	LastSettledRound types.RoundID `json:"last_settled_round"`
	Burned           string        `json:"burned"`
}

func Status(ctx *rpctypes.Context) (*ResultStatus, error) {
	sinks := env.Auction.Sinks()
	st := env.Auction.State()

	result := &ResultStatus{
		Instance:         env.Instance,
		Version:          env.Version,
		DeployedAt:       env.DeployedAt,
		Params:           makeResultParams(env.Auction.Params()),
		ProceedsAddress:  sinks.Proceeds,
		ForfeitSink:      sinks.Forfeit.String(),
		LastSettledRound: st.LastSettledRound,
		Burned:           types.FormatAmount(st.Burned),
	}
	if !sinks.Treasury.IsZero() {
		treasury := sinks.Treasury
		result.TreasuryAddress = &treasury
	}
	return result, nil
}
