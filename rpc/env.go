package rpc

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"energy_auction/auction"
	"energy_auction/libs/metric"
)

var (
	env  *Environment
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

func SetEnvironment(e *Environment) {
	env = e
}

// Environment rpc处理函数共享的依赖，由node在启动时设置
type Environment struct {
	Auction *auction.AuctionState

	MetricSet *metric.MetricSet

	// 部署信息
	Instance   string
	DeployedAt time.Time
	Version    string
}
