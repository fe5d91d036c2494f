package types

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ParseAmount 解析十进制的非负金额
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", s)
	}
	return v, nil
}

// FormatAmount nil视为0
func FormatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func ZeroAmount() *uint256.Int {
	return new(uint256.Int)
}

// AmountOrZero 返回一个副本，调用方可以放心修改
func AmountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return ZeroAmount()
	}
	return new(uint256.Int).Set(v)
}
