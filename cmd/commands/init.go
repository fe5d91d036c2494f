package commands

import (
	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	cfg "energy_auction/config"
)

// InitFilesCmd 初始化根目录，写入默认配置
var InitFilesCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the auction home directory",
	RunE:  initFiles,
}

var (
	proceedsAddress string
	forfeitSink     string
	treasuryAddress string
)

func init() {
	InitFilesCmd.Flags().StringVar(&proceedsAddress, "proceeds-address", "", "成交价的收款地址，不指定则使用默认配置")
	InitFilesCmd.Flags().StringVar(&forfeitSink, "forfeit-sink", "", "未揭示押金的去向 burn|treasury")
	InitFilesCmd.Flags().StringVar(&treasuryAddress, "treasury-address", "", "forfeit-sink为treasury时的收款地址")
}

func initFiles(cmd *cobra.Command, args []string) error {
	return initFilesWithConfig(config)
}

func initFilesWithConfig(config *cfg.Config) error {
	if err := cfg.EnsureRoot(config.RootDir); err != nil {
		return err
	}

	configFile := config.ConfigFilePath()
	if tmos.FileExists(configFile) {
		logger.Info("Found config file", "path", configFile)
		return nil
	}

	if proceedsAddress != "" {
		config.Auction.ProceedsAddress = proceedsAddress
	}
	if forfeitSink != "" {
		config.Auction.ForfeitSink = forfeitSink
	}
	if treasuryAddress != "" {
		config.Auction.TreasuryAddress = treasuryAddress
	}
	if err := config.ValidateBasic(); err != nil {
		return err
	}

	if err := cfg.WriteConfigFile(configFile, config); err != nil {
		return err
	}
	logger.Info("Generated config file", "path", configFile)
	return nil
}
