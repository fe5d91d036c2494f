package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_auction/types"
)

func TestNewDeploymentRejectsNonPositive(t *testing.T) {
	cases := []struct {
		name                          string
		bidding, reveal, nextRoundGap int64
	}{
		{"zero bidding", 0, 30, 10},
		{"negative reveal", 60, -1, 10},
		{"zero delay", 60, 30, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDeployment(tc.bidding, tc.reveal, tc.nextRoundGap, 100)
			assert.Nil(t, d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidConfiguration))
		})
	}
}

func TestDeploymentSaveLoad(t *testing.T) {
	d, err := NewDeployment(120, 60, 15, 42)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d.Instance, "auction-"))
	assert.Equal(t, 2*time.Minute, d.BiddingTime)

	path := filepath.Join(tempDir(t), ".env")
	require.NoError(t, d.Save(path))

	loaded, err := LoadDeployment(path)
	require.NoError(t, err)
	assert.Equal(t, d.Instance, loaded.Instance)
	assert.Equal(t, d.BiddingTime, loaded.BiddingTime)
	assert.Equal(t, d.RevealTime, loaded.RevealTime)
	assert.Equal(t, d.NextRoundDelay, loaded.NextRoundDelay)
	assert.EqualValues(t, 42, loaded.EnergyAmount)
	assert.True(t, d.DeployedAt.Equal(loaded.DeployedAt))

	// 重新部署覆盖旧文件
	d2, err := NewDeployment(30, 30, 30, 0)
	require.NoError(t, err)
	require.NoError(t, d2.Save(path))
	loaded, err = LoadDeployment(path)
	require.NoError(t, err)
	assert.Equal(t, d2.Instance, loaded.Instance)
	assert.Equal(t, 30*time.Second, loaded.BiddingTime)
}

func TestApplyDeployment(t *testing.T) {
	d, err := NewDeployment(5, 6, 7, 0)
	require.NoError(t, err)

	cfg := DefaultAuctionConfig()
	cfg.ApplyDeployment(d)
	assert.Equal(t, 5*time.Second, cfg.BiddingTime)
	assert.Equal(t, 6*time.Second, cfg.RevealTime)
	assert.Equal(t, 7*time.Second, cfg.NextRoundDelay)
	// 没有指定电量时保留配置文件中的值
	assert.EqualValues(t, 100, cfg.EnergyAmount)
}

func TestLoadDeploymentMissing(t *testing.T) {
	_, err := LoadDeployment(filepath.Join(tempDir(t), ".env"))
	assert.Error(t, err)
}
