package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmrand "github.com/tendermint/tendermint/libs/rand"

	"energy_auction/types"
)

var (
	bid   string
	nonce string
)

// GenCommitmentCmd 计算密封出价，参与者在Bidding阶段提交输出的hash
var GenCommitmentCmd = &cobra.Command{
	Use:     "gen-commitment",
	Aliases: []string{"gen_commitment"},
	Short:   "Seal a bid into a commitment hash",
	PreRun:  deprecateSnakeCase,
	RunE:    genCommitment,
}

func init() {
	GenCommitmentCmd.Flags().StringVar(&bid, "bid", "", "出价，十进制整数")
	GenCommitmentCmd.MarkFlagRequired("bid")
	GenCommitmentCmd.Flags().StringVar(&nonce, "nonce", "", "随机串，不指定则随机生成；揭示时需要提交同一个nonce")
}

func genCommitment(cmd *cobra.Command, args []string) error {
	value, err := types.ParseAmount(bid)
	if err != nil {
		return err
	}
	if nonce == "" {
		nonce = tmrand.Str(16)
	}

	fmt.Printf(`{"bid":"%v","nonce":"%v","commitment":"%v"}
`, types.FormatAmount(value), nonce, types.SealBid(value, nonce).Hex())
	return nil
}
