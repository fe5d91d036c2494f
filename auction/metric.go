package auction

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"
	jsoniter "github.com/json-iterator/go"
	metrics "github.com/rcrowley/go-metrics"

	"energy_auction/types"
)

const (
	metricCommits       = "auction.commits"
	metricReveals       = "auction.reveals"
	metricRejected      = "auction.rejected."
	metricSettlements   = "auction.settlements"
	metricNoWinner      = "auction.no_winner"
	metricForfeits      = "auction.forfeits"
	metricClearingPrice = "auction.clearing_price"
)

func newAuctionMetric() *auctionMetric {
	return &auctionMetric{
		registry:         metrics.NewRegistry(),
		Round:            0,
		Phase:            types.PhasePending.String(),
		LastSettledRound: -1,
	}
}

// auctionMetric 实现 metric.MetricItem
type auctionMetric struct {
	mtx      sync.Mutex
	registry metrics.Registry

	Round      int64     `json:"current_round"`
	Phase      string    `json:"phase"`
	RoundStart time.Time `json:"round_start"`
	Commits    int       `json:"commits"`
	Reveals    int       `json:"reveals"`

	LastSettledRound  int64  `json:"last_settled_round"`
	LastWinner        string `json:"last_winner"`
	LastClearingPrice string `json:"last_clearing_price"`
}

type auctionMetricJSON struct {
	*auctionMetric
	Counters      map[string]int64 `json:"counters"`
	ClearingPrice histogramJSON    `json:"clearing_price"`
}

type histogramJSON struct {
	Count  int64   `json:"count"`
	Min    int64   `json:"min"`
	Max    int64   `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

func (am *auctionMetric) JSONString() string {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	out := auctionMetricJSON{auctionMetric: am, Counters: map[string]int64{}}
	am.registry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case metrics.Counter:
			out.Counters[name] = m.Count()
		case metrics.Histogram:
			snap := m.Snapshot()
			out.ClearingPrice = histogramJSON{
				Count:  snap.Count(),
				Min:    snap.Min(),
				Max:    snap.Max(),
				Mean:   snap.Mean(),
				Median: snap.Percentile(0.5),
			}
		}
	})
	s, _ := jsoniter.MarshalToString(out)
	return s
}

func (am *auctionMetric) counter(name string) metrics.Counter {
	return metrics.GetOrRegisterCounter(name, am.registry)
}

func (am *auctionMetric) MarkRound(round types.Round) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.Round = round.ID.Int64()
	am.Phase = round.Phase.String()
	am.RoundStart = round.Start
	am.Commits = 0
	am.Reveals = 0
}

func (am *auctionMetric) MarkPhase(phase types.Phase) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.Phase = phase.String()
}

func (am *auctionMetric) MarkCommit() {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.Commits++
	am.counter(metricCommits).Inc(1)
}

func (am *auctionMetric) MarkReveal() {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.Reveals++
	am.counter(metricReveals).Inc(1)
}

func (am *auctionMetric) MarkRejected(kind error) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.counter(metricRejected + kindName(kind)).Inc(1)
}

func (am *auctionMetric) MarkSettled(o *types.Outcome) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	am.LastSettledRound = o.Round.Int64()
	am.counter(metricSettlements).Inc(1)
	am.counter(metricForfeits).Inc(int64(len(o.Forfeited)))
	if !o.HasWinner() {
		am.LastWinner = ""
		am.LastClearingPrice = ""
		am.counter(metricNoWinner).Inc(1)
		return
	}
	am.LastWinner = o.Winner.Hex()
	am.LastClearingPrice = types.FormatAmount(o.ClearingPrice)
	h := metrics.GetOrRegisterHistogram(metricClearingPrice, am.registry, metrics.NewUniformSample(1028))
	h.Update(clampInt64(o.ClearingPrice))
}

// kindName ErrDuplicateCommitment -> "duplicate_commitment"
func kindName(kind error) string {
	switch kind {
	case types.ErrPhase:
		return "phase"
	case types.ErrDuplicateCommitment:
		return "duplicate_commitment"
	case types.ErrNoCommitment:
		return "no_commitment"
	case types.ErrHashMismatch:
		return "hash_mismatch"
	case types.ErrAlreadyRevealed:
		return "already_revealed"
	case types.ErrInvalidConfiguration:
		return "invalid_configuration"
	case types.ErrAlreadySettled:
		return "already_settled"
	case types.ErrInvalidCommitment:
		return "invalid_commitment"
	case types.ErrInvalidEscrow:
		return "invalid_escrow"
	case nil:
		return "other"
	default:
		return strings.ReplaceAll(strings.ToLower(kind.Error()), " ", "_")
	}
}

// histogram只接受int64
func clampInt64(v *uint256.Int) int64 {
	if v == nil {
		return 0
	}
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v.Uint64())
}
