package state

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"energy_auction/types"
)

//-----------------------------------------------------------------------------
// TransferKind enum type

type TransferKind uint8

const (
	TransferRefund   = TransferKind(0x01) // 退还给参与者
	TransferProceeds = TransferKind(0x02) // 成交价转给收款方
	TransferForfeit  = TransferKind(0x03) // 未揭示者的押金罚没
)

func (k TransferKind) String() string {
	switch k {
	case TransferRefund:
		return "Refund"
	case TransferProceeds:
		return "Proceeds"
	case TransferForfeit:
		return "Forfeit"
	default:
		return fmt.Sprintf("UnknownTransfer(%d)", uint8(k))
	}
}

// Transfer - 结算时押金的一笔去向
// From为押金所属的参与者，To为收款账户；To为零地址表示销毁
type Transfer struct {
	Kind   TransferKind
	Round  types.RoundID
	From   types.Address
	To     types.Address
	Amount *uint256.Int
}

func (t Transfer) IsBurn() bool {
	return t.To.IsZero()
}

func (t Transfer) String() string {
	to := t.To.Hex()
	if t.IsBurn() {
		to = "burn"
	}
	return fmt.Sprintf("%v{%v %v -> %v}", t.Kind, types.FormatAmount(t.Amount), t.From.Hex(), to)
}

//-----------------------------------------------------------------------------
// ForfeitPolicy

// ForfeitPolicy 未揭示者押金的去向
type ForfeitPolicy uint8

const (
	ForfeitBurn     = ForfeitPolicy(0x01)
	ForfeitTreasury = ForfeitPolicy(0x02)
)

func ParseForfeitPolicy(s string) (ForfeitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "burn":
		return ForfeitBurn, nil
	case "treasury":
		return ForfeitTreasury, nil
	default:
		return 0, types.InvalidConfiguration("unknown forfeit sink %q, expected burn or treasury", s)
	}
}

func (p ForfeitPolicy) String() string {
	switch p {
	case ForfeitBurn:
		return "burn"
	case ForfeitTreasury:
		return "treasury"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

// Sinks 成交价和罚没押金的去向
type Sinks struct {
	Proceeds types.Address
	Forfeit  ForfeitPolicy
	Treasury types.Address // Forfeit为ForfeitTreasury时有效
}

func (s Sinks) ValidateBasic() error {
	if s.Proceeds.IsZero() {
		return types.InvalidConfiguration("proceeds address is empty")
	}
	switch s.Forfeit {
	case ForfeitBurn:
	case ForfeitTreasury:
		if s.Treasury.IsZero() {
			return types.InvalidConfiguration("forfeit sink is treasury but treasury address is empty")
		}
	default:
		return types.InvalidConfiguration("unknown forfeit policy %v", s.Forfeit)
	}
	return nil
}

func (s Sinks) forfeitTo() types.Address {
	if s.Forfeit == ForfeitTreasury {
		return s.Treasury
	}
	return types.ZeroAddress
}

// PlanTransfers 纯函数，根据结果和每个参与者锁定的押金计算资金去向
//   - 赢家：退还 escrow-price，price转给收款方
//   - 其他揭示者和出价超过押金的揭示者：全额退还
//   - 未揭示者：押金罚没
//
// 金额为0的转账省略。所有转账之和必须等于锁定押金之和
func PlanTransfers(o *types.Outcome, escrows map[types.Address]*uint256.Int, sinks Sinks) ([]Transfer, error) {
	transfers := make([]Transfer, 0, len(o.Bidders)+1)
	add := func(kind TransferKind, from, to types.Address, amount *uint256.Int) {
		if amount.IsZero() {
			return
		}
		transfers = append(transfers, Transfer{Kind: kind, Round: o.Round, From: from, To: to, Amount: amount})
	}

	for _, rb := range o.Revealed {
		escrow, ok := escrows[rb.Participant]
		if !ok {
			return nil, fmt.Errorf("no escrow locked for revealed participant %v", rb.Participant)
		}
		if o.HasWinner() && rb.Participant == *o.Winner {
			if escrow.Lt(o.ClearingPrice) {
				return nil, fmt.Errorf("winner escrow %v below clearing price %v",
					types.FormatAmount(escrow), types.FormatAmount(o.ClearingPrice))
			}
			refund := new(uint256.Int).Sub(escrow, o.ClearingPrice)
			add(TransferRefund, rb.Participant, rb.Participant, refund)
			add(TransferProceeds, rb.Participant, sinks.Proceeds, types.AmountOrZero(o.ClearingPrice))
			continue
		}
		add(TransferRefund, rb.Participant, rb.Participant, types.AmountOrZero(escrow))
	}

	for _, addr := range o.Underfunded {
		escrow, ok := escrows[addr]
		if !ok {
			return nil, fmt.Errorf("no escrow locked for underfunded participant %v", addr)
		}
		add(TransferRefund, addr, addr, types.AmountOrZero(escrow))
	}

	for _, addr := range o.Forfeited {
		escrow, ok := escrows[addr]
		if !ok {
			return nil, fmt.Errorf("no escrow locked for forfeiting participant %v", addr)
		}
		add(TransferForfeit, addr, sinks.forfeitTo(), types.AmountOrZero(escrow))
	}

	// 押金守恒
	locked, paid := types.ZeroAmount(), types.ZeroAmount()
	for _, addr := range o.Bidders {
		if escrow, ok := escrows[addr]; ok {
			locked.Add(locked, escrow)
		}
	}
	for _, t := range transfers {
		paid.Add(paid, t.Amount)
	}
	if !locked.Eq(paid) {
		return nil, fmt.Errorf("settlement of round %v does not conserve escrow: locked %v, paid %v",
			o.Round, types.FormatAmount(locked), types.FormatAmount(paid))
	}
	return transfers, nil
}
