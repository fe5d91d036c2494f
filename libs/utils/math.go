package utils

import (
	"sort"

	"github.com/holiman/uint256"
)

// 成交价统计，空输入时返回nil

func Max(data ...*uint256.Int) *uint256.Int {
	if len(data) == 0 {
		return nil
	}

	res := data[0]
	for _, datum := range data {
		if datum.Gt(res) {
			res = datum
		}
	}
	return new(uint256.Int).Set(res)
}

func Min(data ...*uint256.Int) *uint256.Int {
	if len(data) == 0 {
		return nil
	}

	res := data[0]
	for _, datum := range data {
		if datum.Lt(res) {
			res = datum
		}
	}
	return new(uint256.Int).Set(res)
}

// Median 偶数个时取中间两个的平均值（向下取整），不修改输入
func Median(data ...*uint256.Int) *uint256.Int {
	if len(data) == 0 {
		return nil
	}

	sorted := make([]*uint256.Int, len(data))
	copy(sorted, data)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Lt(sorted[j])
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return new(uint256.Int).Set(sorted[mid])
	}
	return avg2(sorted[mid-1], sorted[mid])
}

// Avg 向下取整
func Avg(data ...*uint256.Int) *uint256.Int {
	if len(data) == 0 {
		return nil
	}
	sum := Sum(data...)
	return sum.Div(sum, uint256.NewInt(uint64(len(data))))
}

// Sum 溢出时按2^256取模
func Sum(data ...*uint256.Int) *uint256.Int {
	res := new(uint256.Int)
	for _, datum := range data {
		res.Add(res, datum)
	}
	return res
}

// avg2 (a+b)/2，不会溢出
func avg2(a, b *uint256.Int) *uint256.Int {
	halfA := new(uint256.Int).Rsh(a, 1)
	halfB := new(uint256.Int).Rsh(b, 1)
	res := new(uint256.Int).Add(halfA, halfB)
	if a.Uint64()&1 == 1 && b.Uint64()&1 == 1 {
		res.AddUint64(res, 1)
	}
	return res
}
