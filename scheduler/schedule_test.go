package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_auction/types"
)

func testParams() types.Params {
	return types.Params{
		BiddingTime:    10 * time.Second,
		RevealTime:     5 * time.Second,
		NextRoundDelay: 3 * time.Second,
		EnergyAmount:   100,
	}
}

// 一轮在t0进入Bidding，t0+bT进入Reveal，t0+bT+rT进入Settled，再过delay下一轮开始
func TestPhaseTiming(t *testing.T) {
	cases := []types.Params{
		testParams(),
		{BiddingTime: time.Nanosecond, RevealTime: time.Nanosecond, NextRoundDelay: time.Nanosecond, EnergyAmount: 1},
		{BiddingTime: 10 * time.Minute, RevealTime: 5 * time.Second, NextRoundDelay: time.Hour, EnergyAmount: 7},
	}
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, p := range cases {
		r := Genesis(types.GenesisRoundID, t0, p)
		require.Equal(t, types.PhaseBidding, r.Phase)

		assert.Equal(t, types.PhaseBidding, PhaseAt(r, t0))
		assert.Equal(t, types.PhaseBidding, PhaseAt(r, t0.Add(p.BiddingTime-1)))
		assert.Equal(t, types.PhaseReveal, PhaseAt(r, t0.Add(p.BiddingTime)))
		assert.Equal(t, types.PhaseReveal, PhaseAt(r, t0.Add(p.BiddingTime+p.RevealTime-1)))
		assert.Equal(t, types.PhaseSettled, PhaseAt(r, t0.Add(p.BiddingTime+p.RevealTime)))
		assert.Equal(t, types.PhasePending, PhaseAt(r, t0.Add(p.Cycle())))

		next := Next(r, p)
		assert.Equal(t, r.ID.Next(), next.ID)
		assert.Equal(t, t0.Add(p.Cycle()), next.Start)
		assert.Equal(t, types.PhaseBidding, PhaseAt(next, t0.Add(p.Cycle())))
	}
}

func TestNextUsesNewParams(t *testing.T) {
	t0 := time.Unix(1000, 0)
	r := Genesis(types.GenesisRoundID, t0, testParams())

	p2 := testParams()
	p2.BiddingTime = time.Minute
	next := Next(r, p2)

	assert.Equal(t, r.NextRoundStart, next.Start)
	assert.Equal(t, r.NextRoundStart.Add(time.Minute), next.BiddingDeadline)
	assert.Equal(t, p2, next.Params)
}

func TestNextDeadline(t *testing.T) {
	r := Genesis(types.RoundID(4), time.Unix(0, 0), testParams())

	assert.Equal(t, r.BiddingDeadline, NextDeadline(r, types.PhaseBidding))
	assert.Equal(t, r.RevealDeadline, NextDeadline(r, types.PhaseReveal))
	assert.Equal(t, r.NextRoundStart, NextDeadline(r, types.PhaseSettled))
	assert.Equal(t, r.NextRoundStart, NextDeadline(r, types.PhasePending))
}
