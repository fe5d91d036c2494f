package utils

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func amounts(vs ...uint64) []*uint256.Int {
	res := make([]*uint256.Int, 0, len(vs))
	for _, v := range vs {
		res = append(res, uint256.NewInt(v))
	}
	return res
}

func TestStats(t *testing.T) {
	data := amounts(80, 120, 100, 90)

	assert.Equal(t, uint64(120), Max(data...).Uint64())
	assert.Equal(t, uint64(80), Min(data...).Uint64())
	assert.Equal(t, uint64(95), Median(data...).Uint64())
	assert.Equal(t, uint64(97), Avg(data...).Uint64())
	assert.Equal(t, uint64(390), Sum(data...).Uint64())

	// Median不修改输入顺序
	assert.Equal(t, uint64(80), data[0].Uint64())
	assert.Equal(t, uint64(120), data[1].Uint64())

	assert.Equal(t, uint64(100), Median(amounts(120, 80, 100)...).Uint64())
	assert.Equal(t, uint64(7), Median(amounts(7)...).Uint64())
}

func TestStatsEmpty(t *testing.T) {
	assert.Nil(t, Max())
	assert.Nil(t, Min())
	assert.Nil(t, Median())
	assert.Nil(t, Avg())
	assert.True(t, Sum().IsZero())
}

func TestMedianNoOverflow(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	assert.Equal(t, max, Median(max, max))

	maxMinusOne := new(uint256.Int).SubUint64(max, 1)
	// (2^256-1 + 2^256-2)/2 向下取整
	assert.Equal(t, maxMinusOne, Median(max, maxMinusOne))
}

func TestMaxReturnsCopy(t *testing.T) {
	data := amounts(1, 5)
	m := Max(data...)
	m.AddUint64(m, 1)
	assert.Equal(t, uint64(5), data[1].Uint64())
}
