package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	"energy_auction/rpc"
)

var (
	target      string
	bidderCount int
	rounds      int
	maxBid      int
	forfeitRate float64
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "bidsim",
	Short: "Simulate bidders against a running auction node",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&target, "target", "127.0.0.1:26680", "拍卖节点的rpc地址")
	rootCmd.Flags().IntVarP(&bidderCount, "bidders", "n", 5, "参与者数量")
	rootCmd.Flags().IntVarP(&rounds, "rounds", "r", 3, "模拟的轮数")
	rootCmd.Flags().IntVar(&maxBid, "max-bid", 1000, "最高出价")
	rootCmd.Flags().Float64Var(&forfeitRate, "forfeit-rate", 0.1, "参与者不揭示的概率")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}

func run(cmd *cobra.Command, args []string) error {
	if bidderCount <= 0 || rounds <= 0 || maxBid <= 0 {
		return fmt.Errorf("bidders, rounds and max-bid must be positive")
	}

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	if !verbose {
		logger = log.NewFilter(logger, log.AllowInfo())
	}

	s := newSimulator(target, bidderCount, rounds, maxBid, forfeitRate)
	s.SetLogger(logger.With("module", "bidsim"))
	if err := s.Start(); err != nil {
		return err
	}
	defer s.Stop()

	outcomes, err := s.Run()
	summary := rpc.SummarizePrices(outcomes)
	logger.Info("simulation finished", "rounds", summary.Rounds, "traded", summary.Traded,
		"minPrice", summary.MinPrice, "maxPrice", summary.MaxPrice, "avgPrice", summary.AvgPrice)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
