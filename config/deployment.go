package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	tmos "github.com/tendermint/tendermint/libs/os"
	tmrand "github.com/tendermint/tendermint/libs/rand"

	"energy_auction/types"
)

// .env 中的键
const (
	envInstance       = "AUCTION_INSTANCE"
	envBiddingTime    = "BIDDING_TIME"
	envRevealTime     = "REVEAL_TIME"
	envNextRoundDelay = "NEXT_ROUND_DELAY"
	envEnergyAmount   = "ENERGY_AMOUNT"
	envDeployedAt     = "DEPLOYED_AT"
)

// Deployment 一次部署的记录，写入.env供start和外部工具读取
// 时长在文件中以秒为单位
type Deployment struct {
	Instance       string
	BiddingTime    time.Duration
	RevealTime     time.Duration
	NextRoundDelay time.Duration
	EnergyAmount   uint64
	DeployedAt     time.Time
}

// NewDeployment 校验参数并生成新的实例编号
// 任意一个时长不为正都返回 ErrInvalidConfiguration，只影响这一次部署
func NewDeployment(biddingTime, revealTime, nextRoundDelay int64, energyAmount uint64) (*Deployment, error) {
	if biddingTime <= 0 {
		return nil, types.InvalidConfiguration("bidding time must be positive, got %ds", biddingTime)
	}
	if revealTime <= 0 {
		return nil, types.InvalidConfiguration("reveal time must be positive, got %ds", revealTime)
	}
	if nextRoundDelay <= 0 {
		return nil, types.InvalidConfiguration("next round delay must be positive, got %ds", nextRoundDelay)
	}
	return &Deployment{
		Instance:       fmt.Sprintf("auction-%v", tmrand.Str(8)),
		BiddingTime:    time.Duration(biddingTime) * time.Second,
		RevealTime:     time.Duration(revealTime) * time.Second,
		NextRoundDelay: time.Duration(nextRoundDelay) * time.Second,
		EnergyAmount:   energyAmount,
		DeployedAt:     time.Now().UTC().Truncate(time.Second),
	}, nil
}

func (d *Deployment) ValidateBasic() error {
	if d.Instance == "" {
		return types.InvalidConfiguration("deployment instance is empty")
	}
	if d.BiddingTime <= 0 || d.RevealTime <= 0 || d.NextRoundDelay <= 0 {
		return types.InvalidConfiguration("deployment durations must be positive")
	}
	return nil
}

// Save 写入.env文件，已有文件会被覆盖
func (d *Deployment) Save(path string) error {
	v := viper.New()
	v.SetConfigType("env")

	v.Set(envInstance, d.Instance)
	v.Set(envBiddingTime, int64(d.BiddingTime/time.Second))
	v.Set(envRevealTime, int64(d.RevealTime/time.Second))
	v.Set(envNextRoundDelay, int64(d.NextRoundDelay/time.Second))
	v.Set(envEnergyAmount, d.EnergyAmount)
	v.Set(envDeployedAt, d.DeployedAt.Format(time.RFC3339))

	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrapf(err, "write deployment file %s", path)
	}
	return nil
}

// LoadDeployment 读取.env文件
func LoadDeployment(path string) (*Deployment, error) {
	if !tmos.FileExists(path) {
		return nil, fmt.Errorf("deployment file %s does not exist", path)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read deployment file %s", path)
	}

	d := &Deployment{
		Instance:       v.GetString(envInstance),
		BiddingTime:    time.Duration(v.GetInt64(envBiddingTime)) * time.Second,
		RevealTime:     time.Duration(v.GetInt64(envRevealTime)) * time.Second,
		NextRoundDelay: time.Duration(v.GetInt64(envNextRoundDelay)) * time.Second,
		EnergyAmount:   v.GetUint64(envEnergyAmount),
	}
	if at := v.GetString(envDeployedAt); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", envDeployedAt)
		}
		d.DeployedAt = t
	}
	if err := d.ValidateBasic(); err != nil {
		return nil, err
	}
	return d, nil
}
