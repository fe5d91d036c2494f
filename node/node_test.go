package node

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/events"
	"github.com/tendermint/tendermint/libs/log"
	rpcclient "github.com/tendermint/tendermint/rpc/jsonrpc/client"

	"energy_auction/auction"
	cfg "energy_auction/config"
	"energy_auction/rpc"
	"energy_auction/types"
)

func newTestNode(t *testing.T, config *cfg.Config) *Node {
	n, err := NewNode(config, nil, log.TestingLogger())
	require.NoError(t, err)
	return n
}

func waitSettled(t *testing.T, n *Node) <-chan *types.Outcome {
	ch := make(chan *types.Outcome, 4)
	err := n.Auction().AddListener("test", auction.EventRoundSettled, func(data events.EventData) {
		ch <- data.(*types.Outcome)
	})
	require.NoError(t, err)
	return ch
}

func TestNodeStartStop(t *testing.T) {
	defer leaktest.CheckTimeout(t, 5*time.Second)()

	n := newTestNode(t, cfg.TestConfig())
	require.NoError(t, n.Start())
	assert.NotEmpty(t, n.RPCAddress())
	assert.Equal(t, "ephemeral", n.InstanceInfo().Instance)
	assert.True(t, n.MetricSet().HasMetrics("auction"))
	assert.True(t, n.MetricSet().HasMetrics("ledger"))

	require.NoError(t, n.Stop())
}

func TestNodeSettlesOnDeadline(t *testing.T) {
	defer leaktest.CheckTimeout(t, 5*time.Second)()

	n := newTestNode(t, cfg.TestConfig())
	settled := waitSettled(t, n)
	require.NoError(t, n.Start())
	defer n.Stop()

	alice := types.BytesToAddress([]byte{0x0a})
	_, err := n.Auction().Commit(alice, types.SealBid(uint256.NewInt(5), "n"), uint256.NewInt(5))
	require.NoError(t, err)

	// 没有任何揭示，由定时器在截止时间结算，押金罚没
	select {
	case o := <-settled:
		assert.EqualValues(t, 1, o.Round)
		assert.False(t, o.HasWinner())
		assert.Equal(t, []types.Address{alice}, o.Forfeited)
	case <-time.After(3 * time.Second):
		t.Fatal("round was not settled by the ticker")
	}
}

func TestNodeRPC(t *testing.T) {
	n := newTestNode(t, cfg.TestConfig())
	require.NoError(t, n.Start())
	defer n.Stop()

	httpClient := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	c, err := rpcclient.NewWithHTTPClient("tcp://"+n.RPCAddress(), httpClient)
	require.NoError(t, err)

	status := new(rpc.ResultStatus)
	_, err = c.Call(context.Background(), "status", map[string]interface{}{}, status)
	require.NoError(t, err)
	assert.Equal(t, "ephemeral", status.Instance)
	assert.Equal(t, Version, status.Version)
	assert.Equal(t, "burn", status.ForfeitSink)

	metrics := new(rpc.ResultMetrics)
	_, err = c.Call(context.Background(), "metrics", map[string]interface{}{"label": "ledger"}, metrics)
	require.NoError(t, err)
	assert.Contains(t, metrics.Metrics, "ledger")
}

func TestNodeResumesRoundNumbering(t *testing.T) {
	dir, err := os.MkdirTemp("", "auction_node")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	config := cfg.TestConfig().SetRoot(dir)
	config.DBBackend = cfg.DBBackendGoLevelDB

	n := newTestNode(t, config)
	settled := waitSettled(t, n)
	require.NoError(t, n.Start())
	select {
	case o := <-settled:
		assert.EqualValues(t, 1, o.Round)
	case <-time.After(3 * time.Second):
		t.Fatal("round was not settled")
	}
	require.NoError(t, n.Stop())

	n = newTestNode(t, config)
	view, err := n.Auction().GetRoundState()
	require.NoError(t, err)
	assert.True(t, view.Round.ID > 1, "round numbering restarted at %v", view.Round.ID)
	require.NoError(t, n.ledger.Close())
}

func TestDefaultNewNodeAppliesDeployment(t *testing.T) {
	dir, err := os.MkdirTemp("", "auction_node")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	config := cfg.TestConfig().SetRoot(dir)
	d, err := cfg.NewDeployment(7, 8, 9, 33)
	require.NoError(t, err)
	require.NoError(t, d.Save(config.EnvFilePath()))

	n, err := DefaultNewNode(config, log.TestingLogger())
	require.NoError(t, err)
	defer n.ledger.Close()

	assert.Equal(t, d.Instance, n.InstanceInfo().Instance)
	p := n.Auction().Params()
	assert.Equal(t, 7*time.Second, p.BiddingTime)
	assert.Equal(t, 8*time.Second, p.RevealTime)
	assert.Equal(t, 9*time.Second, p.NextRoundDelay)
	assert.EqualValues(t, 33, p.EnergyAmount)
}

func TestNewNodeInvalidConfig(t *testing.T) {
	config := cfg.TestConfig()
	config.Auction.BiddingTime = 0
	_, err := NewNode(config, nil, log.TestingLogger())
	assert.Error(t, err)
}

func TestInstanceInfo(t *testing.T) {
	d, err := cfg.NewDeployment(1, 1, 1, 1)
	require.NoError(t, err)

	info, err := NewInstanceInfo(d, "tcp://127.0.0.1:26680")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:26680", info.RPCAddress)
	assert.Equal(t, d.Instance, info.Instance)

	info.Instance = "bad name"
	assert.Error(t, info.Validate())
}
