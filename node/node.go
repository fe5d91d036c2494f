package node

import (
	"net"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/events"
	"github.com/tendermint/tendermint/libs/log"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/libs/service"
	rpcserver "github.com/tendermint/tendermint/rpc/jsonrpc/server"

	"energy_auction/auction"
	cfg "energy_auction/config"
	"energy_auction/libs/metric"
	"energy_auction/rpc"
	"energy_auction/scheduler"
	"energy_auction/state"
	"energy_auction/store"
	"energy_auction/types"
)

const (
	// 账本数据库名
	DBName = "auction"

	tickerListenerID = "node-ticker"
)

type Provider func(*cfg.Config, log.Logger) (*Node, error)

// Node 一个拍卖实例：账本、状态机、定时器和rpc服务
type Node struct {
	service.BaseService

	// config
	config   *cfg.Config
	instance InstanceInfo

	// storage
	ledger *store.KVStore

	// service
	auction *auction.AuctionState
	ticker  *scheduler.Ticker

	metricSet   *metric.MetricSet
	rpcListener net.Listener
}

// DefaultNewNode 读取部署记录（如果有）覆盖配置中的拍卖参数
func DefaultNewNode(config *cfg.Config, logger log.Logger) (*Node, error) {
	var deployment *cfg.Deployment
	if envFile := config.EnvFilePath(); tmos.FileExists(envFile) {
		d, err := cfg.LoadDeployment(envFile)
		if err != nil {
			return nil, err
		}
		config.Auction.ApplyDeployment(d)
		logger.Info("Found deployment", "instance", d.Instance, "path", envFile)
		deployment = d
	}
	return NewNode(config, deployment, logger)
}

func createLedger(config *cfg.Config, logger log.Logger) (*store.KVStore, error) {
	switch config.DBBackend {
	case cfg.DBBackendMemDB:
		return store.NewMemKVStore(logger), nil
	default:
		if err := tmos.EnsureDir(config.DBDir(), 0700); err != nil {
			return nil, errors.Wrap(err, "create db dir")
		}
		return store.NewKVStore(DBName, config.DBDir(), logger)
	}
}

func NewNode(config *cfg.Config, deployment *cfg.Deployment, logger log.Logger) (*Node, error) {
	if err := config.ValidateBasic(); err != nil {
		return nil, err
	}
	sinks, err := config.Auction.Sinks()
	if err != nil {
		return nil, err
	}
	instance, err := NewInstanceInfo(deployment, config.RPC.ListenAddress)
	if err != nil {
		return nil, err
	}

	ledger, err := createLedger(config, logger.With("module", "store"))
	if err != nil {
		return nil, err
	}

	exec := state.NewSettlementExec(ledger, sinks)
	exec.SetLogger(logger.With("module", "settlement"))

	auctionState, err := auction.NewAuctionState(config.Auction.Params(), exec, ledger)
	if err != nil {
		ledger.Close()
		return nil, err
	}
	auctionState.SetLogger(logger.With("module", "auction"))

	ticker := scheduler.NewTicker(scheduler.SystemClock{}, auctionState)
	ticker.SetLogger(logger.With("module", "scheduler"))

	metricSet := metric.NewMetricSet()
	if err := metricSet.SetMetrics(metric.LabelAuction, auctionState.MetricItem()); err != nil {
		ledger.Close()
		return nil, err
	}
	if err := metricSet.SetMetrics(metric.LabelLedger, ledgerMetric(auctionState)); err != nil {
		ledger.Close()
		return nil, err
	}

	node := &Node{
		config:    config,
		instance:  instance,
		ledger:    ledger,
		auction:   auctionState,
		ticker:    ticker,
		metricSet: metricSet,
	}
	node.BaseService = *service.NewBaseService(logger, "Node", node)

	return node, nil
}

func (n *Node) Auction() *auction.AuctionState {
	return n.auction
}

func (n *Node) InstanceInfo() InstanceInfo {
	return n.instance
}

func (n *Node) MetricSet() *metric.MetricSet {
	return n.metricSet
}

// RPCAddress 实际监听的地址，启动之后有效
func (n *Node) RPCAddress() string {
	if n.rpcListener == nil {
		return ""
	}
	return n.rpcListener.Addr().String()
}

func (n *Node) OnStart() error {
	if err := n.auction.Start(); err != nil {
		return err
	}

	// 新一轮开始或结算完成后截止时间改变，重新设置定时器
	rearmTicker := func(data events.EventData) { n.ticker.Rearm() }
	if err := n.auction.AddListener(tickerListenerID, auction.EventNewRound, rearmTicker); err != nil {
		return err
	}
	if err := n.auction.AddListener(tickerListenerID, auction.EventRoundSettled, rearmTicker); err != nil {
		return err
	}
	if err := n.ticker.Start(); err != nil {
		return err
	}

	rpc.SetEnvironment(&rpc.Environment{
		Auction:    n.auction,
		MetricSet:  n.metricSet,
		Instance:   n.instance.Instance,
		DeployedAt: n.instance.DeployedAt,
		Version:    n.instance.Version,
	})
	listener, err := n.startRPC()
	if err != nil {
		return err
	}
	n.rpcListener = listener

	n.Logger.Info("auction node started", "instance", n.instance, "rpc", listener.Addr())
	return nil
}

func (n *Node) OnStop() {
	if n.rpcListener != nil {
		if err := n.rpcListener.Close(); err != nil {
			n.Logger.Error("Error closing listener", "listener", n.rpcListener, "err", err)
		}
	}

	if err := n.ticker.Stop(); err != nil {
		n.Logger.Error("Error stopping ticker", "err", err)
	}
	n.auction.RemoveListener(tickerListenerID)
	if err := n.auction.Stop(); err != nil {
		n.Logger.Error("Error stopping auction", "err", err)
	}

	if err := n.ledger.Close(); err != nil {
		n.Logger.Error("Error closing ledger", "err", err)
	}
}

func (n *Node) startRPC() (net.Listener, error) {
	config := rpcserver.DefaultConfig()
	config.MaxOpenConnections = n.config.RPC.MaxOpenConnections

	rpcLogger := n.Logger.With("module", "rpc-server")

	mux := http.NewServeMux()
	wm := rpcserver.NewWebsocketManager(rpc.Routes)
	wm.SetLogger(rpcLogger.With("protocol", "websocket"))
	mux.HandleFunc("/websocket", wm.WebsocketHandler)
	rpcserver.RegisterRPCFuncs(mux, rpc.Routes, rpcLogger)

	listener, err := rpcserver.Listen(n.config.RPC.ListenAddress, config)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := rpcserver.Serve(listener, mux, rpcLogger, config); err != nil && n.IsRunning() {
			n.Logger.Error("Error serving rpc server", "err", err)
		}
	}()
	return listener, nil
}

// ledgerMetric 账本的汇总信息
func ledgerMetric(as *auction.AuctionState) metric.MetricItem {
	return metric.MetricFunc(func() string {
		st := as.State()
		m := map[string]interface{}{
			"last_settled_round": st.LastSettledRound,
			"burned":             types.FormatAmount(st.Burned),
		}
		if st.LastOutcome.HasWinner() {
			m["last_clearing_price"] = types.FormatAmount(st.LastOutcome.ClearingPrice)
			m["last_winner"] = st.LastOutcome.Winner.Hex()
		}
		bz, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(m)
		if err != nil {
			return "{}"
		}
		return string(bz)
	})
}
