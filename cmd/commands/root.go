package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"

	cfg "energy_auction/config"
)

var (
	config = cfg.DefaultConfig()
	logger = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
)

func init() {
	registerFlagsRootCmd(RootCmd)
}

func registerFlagsRootCmd(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log_level", config.LogLevel, "日志级别 debug|info|error|none")
}

// ParseConfig 读取viper中的配置（配置文件、环境变量和命令行参数）
func ParseConfig() (*cfg.Config, error) {
	conf := cfg.DefaultConfig()
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}
	conf.SetRoot(conf.RootDir)
	if err := cfg.EnsureRoot(conf.RootDir); err != nil {
		return nil, err
	}
	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %v", err)
	}
	return conf, nil
}

// RootCmd is the root command for the auction node.
var RootCmd = &cobra.Command{
	Use:   "auction",
	Short: "Sealed-bid second-price energy auction",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if cmd.Name() == "completion" {
			return nil
		}

		config, err = ParseConfig()
		if err != nil {
			return err
		}

		option, err := log.AllowLevel(config.LogLevel)
		if err != nil {
			return err
		}
		logger = log.NewFilter(logger, option).With("module", "main")
		return nil
	},
}

// deprecateSnakeCase 下划线形式的命令名仍然可用，但提示改用连字符形式
func deprecateSnakeCase(cmd *cobra.Command, args []string) {
	if strings.Contains(cmd.CalledAs(), "_") {
		fmt.Println("Deprecated: snake_case commands will be removed, use hyphen-case instead")
	}
}
