package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmjson "github.com/tendermint/tendermint/libs/json"
	tmos "github.com/tendermint/tendermint/libs/os"

	cfg "energy_auction/config"
	nm "energy_auction/node"
	"energy_auction/rpc"
	"energy_auction/store"
)

var roundLimit int

// ShowRoundsCmd 直接读取账本中归档的结算结果，节点运行时数据库被占用，需要通过rpc的history查询
var ShowRoundsCmd = &cobra.Command{
	Use:     "show-rounds",
	Aliases: []string{"show_rounds"},
	Short:   "Show settled rounds from the local ledger",
	PreRun:  deprecateSnakeCase,
	RunE:    showRounds,
}

func init() {
	ShowRoundsCmd.Flags().IntVar(&roundLimit, "limit", 10, "显示最近的轮数，0表示全部")
}

func showRounds(cmd *cobra.Command, args []string) error {
	if config.DBBackend == cfg.DBBackendMemDB {
		return fmt.Errorf("db_backend is %s, nothing is persisted", config.DBBackend)
	}
	if !tmos.FileExists(config.DBDir()) {
		logger.Info("No ledger found", "dir", config.DBDir())
		return nil
	}

	ledger, err := store.NewKVStore(nm.DBName, config.DBDir(), logger.With("module", "store"))
	if err != nil {
		return err
	}
	defer ledger.Close()

	outcomes, err := ledger.Outcomes(roundLimit)
	if err != nil {
		return err
	}
	result := rpc.ResultHistory{
		Outcomes: outcomes,
		Summary:  rpc.SummarizePrices(outcomes),
	}
	bz, err := tmjson.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(bz))
	return nil
}
