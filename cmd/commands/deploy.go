package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	cfg "energy_auction/config"
)

var (
	biddingTime    int64
	revealTime     int64
	nextRoundDelay int64
	energyAmount   uint64
)

// DeployCmd 创建一个新的拍卖实例，参数写入.env，由start读取
// 重新部署会覆盖旧的.env，账本中的历史轮次保留
var DeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a new auction instance with the given phase durations",
	RunE:  deploy,
}

func init() {
	DeployCmd.Flags().Int64Var(&biddingTime, "bidding-time", 0, "出价阶段时长，秒")
	DeployCmd.MarkFlagRequired("bidding-time")
	DeployCmd.Flags().Int64Var(&revealTime, "reveal-time", 0, "揭示阶段时长，秒")
	DeployCmd.MarkFlagRequired("reveal-time")
	DeployCmd.Flags().Int64Var(&nextRoundDelay, "next-round-delay", 0, "结算后到下一轮开始的间隔，秒")
	DeployCmd.MarkFlagRequired("next-round-delay")
	DeployCmd.Flags().Uint64Var(&energyAmount, "energy", 0, "每轮拍卖的电量(kWh)，不指定则使用配置文件中的值")
}

func deploy(cmd *cobra.Command, args []string) error {
	d, err := cfg.NewDeployment(biddingTime, revealTime, nextRoundDelay, energyAmount)
	if err != nil {
		return err
	}

	// 部署之前确认参数与配置文件合起来是有效的
	auctionConfig := *config.Auction
	auctionConfig.ApplyDeployment(d)
	if err := auctionConfig.ValidateBasic(); err != nil {
		return err
	}

	envFile := config.EnvFilePath()
	if tmos.FileExists(envFile) {
		logger.Info("Found previous deployment, overwriting", "path", envFile)
	}
	if err := d.Save(envFile); err != nil {
		return err
	}
	logger.Info("Deployed auction", "instance", d.Instance, "path", envFile)

	fmt.Printf(`{"instance":"%v","bidding_time":"%v","reveal_time":"%v","next_round_delay":"%v","deployed_at":"%v"}
`, d.Instance, d.BiddingTime, d.RevealTime, d.NextRoundDelay, d.DeployedAt.Format(time.RFC3339))
	return nil
}
