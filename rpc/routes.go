package rpc

import rpc "github.com/tendermint/tendermint/rpc/jsonrpc/server"

var Routes = map[string]*rpc.RPCFunc{
	// 拍卖
	"commit":      rpc.NewRPCFunc(Commit, "participant,commitment,escrow"),
	"reveal":      rpc.NewRPCFunc(Reveal, "participant,bid,nonce"),
	"finalize":    rpc.NewRPCFunc(Finalize, ""),
	"round_state": rpc.NewRPCFunc(RoundState, ""),

	// 历史
	"round":   rpc.NewRPCFunc(Round, "id"),
	"history": rpc.NewRPCFunc(History, "limit"),

	// 资金
	"balance":  rpc.NewRPCFunc(Balance, "participant"),
	"withdraw": rpc.NewRPCFunc(Withdraw, "participant"),

	// 运维
	"reconfigure": rpc.NewRPCFunc(Reconfigure, "bidding_time,reveal_time,next_round_delay,energy_amount"),

	"status":  rpc.NewRPCFunc(Status, ""),
	"metrics": rpc.NewRPCFunc(JSONMetrics, "label"),
}
