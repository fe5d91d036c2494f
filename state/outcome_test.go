package state

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_auction/types"
)

var (
	p1 = types.BytesToAddress([]byte{0x01})
	p2 = types.BytesToAddress([]byte{0x02})
	p3 = types.BytesToAddress([]byte{0x03})
)

func testRound() types.Round {
	t0 := time.Unix(1700000000, 0)
	return types.Round{
		ID:              5,
		Params:          types.Params{BiddingTime: time.Minute, RevealTime: time.Minute, NextRoundDelay: time.Minute, EnergyAmount: 25},
		Start:           t0,
		BiddingDeadline: t0.Add(time.Minute),
		RevealDeadline:  t0.Add(2 * time.Minute),
		NextRoundStart:  t0.Add(3 * time.Minute),
		Phase:           types.PhaseReveal,
	}
}

func commit(p types.Address, bid uint64, nonce string, escrow uint64) *types.Commitment {
	return &types.Commitment{
		Round:       5,
		Participant: p,
		Hash:        types.SealBid(uint256.NewInt(bid), nonce),
		Escrow:      uint256.NewInt(escrow),
	}
}

func reveal(p types.Address, bid uint64, nonce string) *types.Reveal {
	return &types.Reveal{Round: 5, Participant: p, Bid: uint256.NewInt(bid), Nonce: nonce}
}

// P1出价100，P2出价80，P1获胜，成交价80
func TestOutcomeSecondPrice(t *testing.T) {
	commits := []*types.Commitment{commit(p1, 100, "n1", 100), commit(p2, 80, "n2", 80)}
	reveals := []*types.Reveal{reveal(p2, 80, "n2"), reveal(p1, 100, "n1")}

	o := ComputeOutcome(testRound(), commits, reveals)
	require.True(t, o.HasWinner())
	assert.Equal(t, p1, *o.Winner)
	assert.Equal(t, uint64(100), o.WinningBid.Uint64())
	assert.Equal(t, uint64(80), o.ClearingPrice.Uint64())
	assert.Equal(t, []types.Address{p1, p2}, o.Bidders)
	assert.Empty(t, o.Forfeited)
	assert.Equal(t, uint64(25), o.EnergyAmount)
	assert.Equal(t, testRound().RevealDeadline, o.SettledAt)
}

// 只有一个有效揭示时，成交价为赢家自己的出价
func TestOutcomeSingleReveal(t *testing.T) {
	commits := []*types.Commitment{commit(p1, 70, "n1", 100)}
	o := ComputeOutcome(testRound(), commits, []*types.Reveal{reveal(p1, 70, "n1")})

	require.True(t, o.HasWinner())
	assert.Equal(t, p1, *o.Winner)
	assert.Equal(t, uint64(70), o.ClearingPrice.Uint64())
	assert.Equal(t, uint64(70), o.WinningBid.Uint64())
}

// P1承诺但从未揭示：流拍，P1的押金罚没
func TestOutcomeNoReveal(t *testing.T) {
	o := ComputeOutcome(testRound(), []*types.Commitment{commit(p1, 100, "n1", 100)}, nil)

	assert.False(t, o.HasWinner())
	assert.True(t, o.ClearingPrice.IsZero())
	assert.Equal(t, []types.Address{p1}, o.Forfeited)
}

func TestOutcomeEmptyRound(t *testing.T) {
	o := ComputeOutcome(testRound(), nil, nil)
	assert.False(t, o.HasWinner())
	assert.Empty(t, o.Bidders)
	assert.Empty(t, o.Forfeited)
	assert.Equal(t, types.RoundID(5), o.Round)
}

// 出价相同时地址小的获胜，输入顺序不影响结果
func TestOutcomeTieBreak(t *testing.T) {
	commits := []*types.Commitment{commit(p2, 100, "b", 100), commit(p1, 100, "a", 100)}
	orders := [][]*types.Reveal{
		{reveal(p1, 100, "a"), reveal(p2, 100, "b")},
		{reveal(p2, 100, "b"), reveal(p1, 100, "a")},
	}
	for i := 0; i < 10; i++ {
		o := ComputeOutcome(testRound(), commits, orders[i%2])
		require.True(t, o.HasWinner())
		assert.Equal(t, p1, *o.Winner)
		assert.Equal(t, uint64(100), o.ClearingPrice.Uint64())
		assert.Equal(t, p2, o.Revealed[1].Participant)
	}
}

// 任意非空揭示集合，成交价不超过赢家出价
func TestClearingPriceNeverExceedsWinningBid(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rnd.Intn(6) + 1
		commits := make([]*types.Commitment, 0, n)
		reveals := make([]*types.Reveal, 0, n)
		for j := 0; j < n; j++ {
			p := types.BytesToAddress([]byte{byte(j + 1)})
			bid := uint64(rnd.Intn(50))
			nonce := fmt.Sprintf("n%d", j)
			commits = append(commits, commit(p, bid, nonce, bid+1))
			reveals = append(reveals, reveal(p, bid, nonce))
		}
		o := ComputeOutcome(testRound(), commits, reveals)
		require.True(t, o.HasWinner())
		assert.False(t, o.ClearingPrice.Gt(o.WinningBid), "price %v > bid %v", o.ClearingPrice, o.WinningBid)
		for _, rb := range o.Revealed {
			assert.False(t, rb.Bid.Gt(o.WinningBid))
		}
	}
}

func TestOutcomeMixedForfeits(t *testing.T) {
	commits := []*types.Commitment{commit(p3, 10, "c", 10), commit(p1, 100, "a", 100), commit(p2, 80, "b", 80)}
	o := ComputeOutcome(testRound(), commits, []*types.Reveal{reveal(p2, 80, "b")})

	require.True(t, o.HasWinner())
	assert.Equal(t, p2, *o.Winner)
	assert.Equal(t, uint64(80), o.ClearingPrice.Uint64())
	assert.Equal(t, []types.Address{p1, p3}, o.Forfeited)
	assert.Equal(t, []types.Address{p1, p2, p3}, o.Bidders)
}

// 出价超过押金的揭示者既不能赢也不能决定成交价
func TestOutcomeUnderfundedExcluded(t *testing.T) {
	commits := []*types.Commitment{commit(p1, 100, "a", 100), commit(p2, 120, "b", 50), commit(p3, 70, "c", 70)}
	reveals := []*types.Reveal{reveal(p2, 120, "b"), reveal(p3, 70, "c"), reveal(p1, 100, "a")}

	o := ComputeOutcome(testRound(), commits, reveals)
	require.True(t, o.HasWinner())
	assert.Equal(t, p1, *o.Winner)
	assert.Equal(t, uint64(70), o.ClearingPrice.Uint64())
	assert.Equal(t, []types.Address{p2}, o.Underfunded)
	assert.Empty(t, o.Forfeited)
	for _, rb := range o.Revealed {
		assert.NotEqual(t, p2, rb.Participant)
	}

	// 唯一的揭示者押金不足时流拍，但押金不罚没
	o = ComputeOutcome(testRound(), commits[1:2], reveals[:1])
	assert.False(t, o.HasWinner())
	assert.Equal(t, []types.Address{p2}, o.Underfunded)
	assert.Empty(t, o.Forfeited)
}
