package types

import "strconv"

// RoundID 拍卖轮次编号，单调递增，每开启新一轮严格+1
type RoundID int64

const (
	RoundIDZero    = RoundID(0)
	GenesisRoundID = RoundID(1)
)

func (id RoundID) Update(delta int) RoundID {
	cur := int64(id)
	return RoundID(cur + int64(delta))
}

// Next 返回下一轮的编号
func (id RoundID) Next() RoundID {
	return id.Update(1)
}

func (id RoundID) Int64() int64 {
	return int64(id)
}

func (id RoundID) Equal(other RoundID) bool {
	return id == other
}

func (id RoundID) Greater(other RoundID) bool {
	return id > other
}

func (id RoundID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
