package types

import (
	types "energy_auction/types"
)

func NewCommitSet() *CommitSet {
	return &CommitSet{
		commits: make(map[types.Address]*types.Commitment),
	}
}

// CommitSet 一轮内的所有承诺，每个参与者最多一个，先到者有效
type CommitSet struct {
	commits map[types.Address]*types.Commitment
	order   []types.Address // 到达顺序
}

// Add 已经存在时返回 types.ErrDuplicateCommitment，不覆盖
func (cs *CommitSet) Add(c *types.Commitment) error {
	if _, exist := cs.commits[c.Participant]; exist {
		return types.ErrDuplicateCommitment
	}
	cs.commits[c.Participant] = c
	cs.order = append(cs.order, c.Participant)
	return nil
}

func (cs *CommitSet) Get(addr types.Address) *types.Commitment {
	c, exist := cs.commits[addr]
	if !exist {
		return nil
	}
	return c
}

func (cs *CommitSet) Has(addr types.Address) bool {
	_, exist := cs.commits[addr]
	return exist
}

func (cs *CommitSet) Size() int {
	return len(cs.order)
}

// List 按到达顺序返回
func (cs *CommitSet) List() []*types.Commitment {
	list := make([]*types.Commitment, 0, len(cs.order))
	for _, addr := range cs.order {
		list = append(list, cs.commits[addr])
	}
	return list
}

func (cs *CommitSet) Participants() []types.Address {
	return append([]types.Address{}, cs.order...)
}
