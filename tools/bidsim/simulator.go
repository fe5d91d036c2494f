package main

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"

	"energy_auction/rpc"
	"energy_auction/types"
)

const (
	// 截止时间之后多等一会，避免和服务端的时钟边界冲突
	deadlineMargin = 20 * time.Millisecond
)

type simulator struct {
	Target      string
	Bidders     int
	Rounds      int
	MaxBid      int
	ForfeitRate float64

	bidders []*bidder
	admin   *wsClient

	logger log.Logger
}

func newSimulator(target string, bidders, rounds, maxBid int, forfeitRate float64) *simulator {
	return &simulator{
		Target:      target,
		Bidders:     bidders,
		Rounds:      rounds,
		MaxBid:      maxBid,
		ForfeitRate: forfeitRate,
		logger:      log.NewNopLogger(),
	}
}

func (s *simulator) SetLogger(l log.Logger) {
	s.logger = l
}

// Start 为每个参与者建立一个连接
func (s *simulator) Start() error {
	admin, err := newWSClient(s.Target, "bidsim")
	if err != nil {
		return err
	}
	s.admin = admin

	for i := 0; i < s.Bidders; i++ {
		b, err := newBidder(s.Target, i)
		if err != nil {
			return err
		}
		s.bidders = append(s.bidders, b)
	}
	return nil
}

func (s *simulator) Stop() {
	for _, b := range s.bidders {
		b.client.close()
	}
	if s.admin != nil {
		s.admin.close()
	}
}

func (s *simulator) roundState() (*rpc.ResultRoundState, error) {
	result := new(rpc.ResultRoundState)
	err := s.admin.call("round_state", nil, result)
	return result, err
}

// waitFor 等到服务端进入phase
func (s *simulator) waitFor(phase types.Phase) (*rpc.ResultRoundState, error) {
	for {
		rs, err := s.roundState()
		if err != nil {
			return nil, err
		}
		if rs.Phase == phase {
			return rs, nil
		}
		wait := rs.NextDeadline.Sub(rs.Now) + deadlineMargin
		s.logger.Debug("waiting for phase", "want", phase, "round", rs.Round, "phase", rs.Phase, "wait", wait)
		time.Sleep(wait)
	}
}

// each 并发地对每个参与者执行f
func (s *simulator) each(f func(b *bidder) error) []error {
	var wg sync.WaitGroup
	errs := make([]error, len(s.bidders))
	for i, b := range s.bidders {
		wg.Add(1)
		go func(i int, b *bidder) {
			defer wg.Done()
			errs[i] = f(b)
		}(i, b)
	}
	wg.Wait()
	return errs
}

// Run 运行Rounds轮，每一轮：出价 -> 揭示 -> 结算 -> 提款
func (s *simulator) Run() ([]*types.Outcome, error) {
	var outcomes []*types.Outcome
	for i := 0; i < s.Rounds; i++ {
		o, err := s.runRound()
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func (s *simulator) runRound() (*types.Outcome, error) {
	rs, err := s.waitFor(types.PhaseBidding)
	if err != nil {
		return nil, err
	}
	round := rs.Round
	logger := s.logger.With("round", round)
	logger.Info("round open", "energy", rs.Params.EnergyAmount, "biddingDeadline", rs.BiddingDeadline)

	errs := s.each(func(b *bidder) error {
		b.prepare(s.MaxBid, s.ForfeitRate)
		_, err := b.commit()
		return err
	})
	s.logErrors(logger, "commit", errs)

	if _, err := s.waitFor(types.PhaseReveal); err != nil {
		return nil, err
	}
	errs = s.each(func(b *bidder) error {
		if b.withhold {
			return nil
		}
		_, err := b.reveal()
		return err
	})
	s.logErrors(logger, "reveal", errs)

	rs, err = s.waitFor(types.PhaseSettled)
	if err != nil {
		return nil, err
	}
	outcome, err := s.finalize(rs)
	if err != nil {
		return nil, err
	}
	if outcome.HasWinner() {
		logger.Info("round settled", "winner", outcome.Winner, "bid", types.FormatAmount(outcome.WinningBid),
			"price", types.FormatAmount(outcome.ClearingPrice), "forfeited", len(outcome.Forfeited))
	} else {
		logger.Info("round settled without winner", "bidders", len(outcome.Bidders), "forfeited", len(outcome.Forfeited))
	}

	errs = s.each(func(b *bidder) error {
		res, err := b.withdraw()
		if err == nil && res.Amount != "0" {
			logger.Debug("withdraw", "participant", b.addr, "amount", res.Amount)
		}
		return err
	})
	s.logErrors(logger, "withdraw", errs)
	return outcome, nil
}

// finalize 定时器可能已经完成了结算，这时从归档中读取
func (s *simulator) finalize(rs *rpc.ResultRoundState) (*types.Outcome, error) {
	outcome := new(types.Outcome)
	err := s.admin.call("finalize", nil, outcome)
	if err == nil {
		return outcome, nil
	}
	if !strings.Contains(err.Error(), types.ErrAlreadySettled.Error()) {
		return nil, errors.Wrap(err, "finalize")
	}
	if rs.Outcome != nil {
		return rs.Outcome, nil
	}
	err = s.admin.call("round", map[string]string{"id": rs.Round.String()}, outcome)
	return outcome, err
}

func (s *simulator) logErrors(logger log.Logger, op string, errs []error) {
	for i, err := range errs {
		if err != nil {
			logger.Error(op+" failed", "participant", s.bidders[i].addr, "err", err)
		}
	}
}
