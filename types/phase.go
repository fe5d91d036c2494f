package types

import (
	"fmt"
	"strings"
)

//-----------------------------------------------------------------------------
// Phase enum type

// Phase 一轮拍卖所处的阶段
// Bidding -> Reveal -> Settled -> Pending -> 下一轮Bidding
type Phase uint8

const (
	PhasePending = Phase(0x00) // 上一轮已归档，下一轮尚未开始
	PhaseBidding = Phase(0x01) // 接收密封出价
	PhaseReveal  = Phase(0x02) // 接收揭示
	PhaseSettled = Phase(0x03) // 已结算，等待nextRoundDelay
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "Pending"
	case PhaseBidding:
		return "Bidding"
	case PhaseReveal:
		return "Reveal"
	case PhaseSettled:
		return "Settled"
	default:
		return fmt.Sprintf("UnknownPhase(%d)", uint8(p))
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Phase) UnmarshalJSON(bz []byte) error {
	s := strings.Trim(string(bz), `"`)
	for _, candidate := range []Phase{PhasePending, PhaseBidding, PhaseReveal, PhaseSettled} {
		if candidate.String() == s {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}
