package main

import (
	"os"
	"path/filepath"

	"github.com/tendermint/tendermint/libs/cli"

	cmd "energy_auction/cmd/commands"
	cfg "energy_auction/config"
	nm "energy_auction/node"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.InitFilesCmd,
		cmd.DeployCmd,
		cmd.GenCommitmentCmd,
		cmd.ShowRoundsCmd,
		cli.NewCompletionCmd(rootCmd, true),
	)

	// 需要替换存储或时间来源时，可以复制这个文件并使用其他的Provider
	nodeFunc := nm.DefaultNewNode

	// Create & start node
	rootCmd.AddCommand(cmd.NewRunNodeCmd(nodeFunc))

	cmd := cli.PrepareBaseCmd(rootCmd, "AUCTION", os.ExpandEnv(filepath.Join("$HOME", cfg.DefaultDirName)))
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
