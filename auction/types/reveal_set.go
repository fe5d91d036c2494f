package types

import (
	types "energy_auction/types"
)

func NewRevealSet() *RevealSet {
	return &RevealSet{
		reveals: make(map[types.Address]*types.Reveal),
	}
}

// RevealSet 一轮内通过校验的揭示，每个参与者最多一个
type RevealSet struct {
	reveals map[types.Address]*types.Reveal
	order   []types.Address
}

// Add 已经揭示过时返回 types.ErrAlreadyRevealed
func (rs *RevealSet) Add(r *types.Reveal) error {
	if _, exist := rs.reveals[r.Participant]; exist {
		return types.ErrAlreadyRevealed
	}
	rs.reveals[r.Participant] = r
	rs.order = append(rs.order, r.Participant)
	return nil
}

func (rs *RevealSet) Get(addr types.Address) *types.Reveal {
	r, exist := rs.reveals[addr]
	if !exist {
		return nil
	}
	return r
}

func (rs *RevealSet) Has(addr types.Address) bool {
	_, exist := rs.reveals[addr]
	return exist
}

func (rs *RevealSet) Size() int {
	return len(rs.order)
}

func (rs *RevealSet) List() []*types.Reveal {
	list := make([]*types.Reveal, 0, len(rs.order))
	for _, addr := range rs.order {
		list = append(list, rs.reveals[addr])
	}
	return list
}

func (rs *RevealSet) Participants() []types.Address {
	return append([]types.Address{}, rs.order...)
}
