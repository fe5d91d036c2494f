package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	nm "energy_auction/node"
)

// AddNodeFlags 可以在命令行覆盖的配置
func AddNodeFlags(cmd *cobra.Command) {
	cmd.Flags().String("db_backend", config.DBBackend, "数据库后端 goleveldb|memdb")
	cmd.Flags().String("db_dir", config.DBPath, "数据库目录")
	cmd.Flags().String("env_file", config.EnvFile, "部署信息文件")
	cmd.Flags().String("rpc.laddr", config.RPC.ListenAddress, "RPC监听地址")
}

// NewRunNodeCmd 启动拍卖节点，读取配置文件和deploy写入的.env
func NewRunNodeCmd(nodeProvider nm.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Aliases: []string{"node", "run"},
		Short:   "Run the auction node",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := nodeProvider(config, logger)
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}

			if err := n.Start(); err != nil {
				return fmt.Errorf("failed to start node: %w", err)
			}

			logger.Info("Started node", "instance", n.InstanceInfo())

			// Stop upon receiving SIGTERM or CTRL-C.
			tmos.TrapSignal(logger, func() {
				if n.IsRunning() {
					if err := n.Stop(); err != nil {
						logger.Error("unable to stop the node", "error", err)
					}
				}
			})

			// Run forever.
			select {}
		},
	}

	AddNodeFlags(cmd)
	return cmd
}
