package main

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	tmrand "github.com/tendermint/tendermint/libs/rand"

	"energy_auction/rpc"
	"energy_auction/types"
)

// bidder 一个模拟的参与者，每轮随机出价
type bidder struct {
	addr   types.Address
	client *wsClient

	// 本轮的出价
	bid      uint64
	nonce    string
	escrow   uint64
	withhold bool // 本轮不揭示，押金被罚没
}

func newBidder(host string, idx int) (*bidder, error) {
	addr := types.BytesToAddress(tmrand.Bytes(20))
	client, err := newWSClient(host, fmt.Sprintf("bidder-%d", idx))
	if err != nil {
		return nil, err
	}
	return &bidder{addr: addr, client: client}, nil
}

// prepare 生成本轮的出价，押金不少于出价
func (b *bidder) prepare(maxBid int, forfeitRate float64) {
	b.bid = uint64(tmrand.Intn(maxBid) + 1)
	b.escrow = b.bid + uint64(tmrand.Intn(maxBid/10+1))
	b.nonce = tmrand.Str(12)
	b.withhold = tmrand.Float64() < forfeitRate
}

func (b *bidder) commit() (*rpc.ResultCommit, error) {
	hash := types.SealBid(uint256.NewInt(b.bid), b.nonce)
	result := new(rpc.ResultCommit)
	err := b.client.call("commit", map[string]string{
		"participant": b.addr.Hex(),
		"commitment":  hash.Hex(),
		"escrow":      strconv.FormatUint(b.escrow, 10),
	}, result)
	return result, err
}

func (b *bidder) reveal() (*rpc.ResultReveal, error) {
	result := new(rpc.ResultReveal)
	err := b.client.call("reveal", map[string]string{
		"participant": b.addr.Hex(),
		"bid":         strconv.FormatUint(b.bid, 10),
		"nonce":       b.nonce,
	}, result)
	return result, err
}

func (b *bidder) withdraw() (*rpc.ResultBalance, error) {
	result := new(rpc.ResultBalance)
	err := b.client.call("withdraw", map[string]string{"participant": b.addr.Hex()}, result)
	return result, err
}
