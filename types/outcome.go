package types

import (
	"time"

	"github.com/holiman/uint256"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RevealedBid 揭示成功的出价
type RevealedBid struct {
	Participant Address
	Bid         *uint256.Int
}

// Outcome - 一轮拍卖的结算结果，结算后不可变，按轮次编号归档
type Outcome struct {
	Round         RoundID
	EnergyAmount  uint64
	Winner        *Address // nil表示流拍
	WinningBid    *uint256.Int
	ClearingPrice *uint256.Int
	Bidders       []Address     // 本轮所有提交过承诺的参与者
	Revealed      []RevealedBid // 按排名顺序
	Forfeited     []Address     // 承诺了但没有揭示
	Underfunded   []Address     // 揭示成功但出价超过押金，不参与排名，押金退还
	SettledAt     time.Time
}

func (o *Outcome) HasWinner() bool {
	return o != nil && o.Winner != nil
}

// ----- json codec -----
// 金额以十进制字符串编码

type revealedBidJSON struct {
	Participant Address `json:"participant"`
	Bid         string  `json:"bid"`
}

type outcomeJSON struct {
	Round         RoundID           `json:"round"`
	EnergyAmount  uint64            `json:"energy_amount"`
	Winner        *Address          `json:"winner"`
	WinningBid    string            `json:"winning_bid"`
	ClearingPrice string            `json:"clearing_price"`
	Bidders       []Address         `json:"bidders"`
	Revealed      []revealedBidJSON `json:"revealed"`
	Forfeited     []Address         `json:"forfeited"`
	Underfunded   []Address         `json:"underfunded,omitempty"`
	SettledAt     time.Time         `json:"settled_at"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	oj := outcomeJSON{
		Round:         o.Round,
		EnergyAmount:  o.EnergyAmount,
		Winner:        o.Winner,
		WinningBid:    FormatAmount(o.WinningBid),
		ClearingPrice: FormatAmount(o.ClearingPrice),
		Bidders:       o.Bidders,
		Revealed:      make([]revealedBidJSON, 0, len(o.Revealed)),
		Forfeited:     o.Forfeited,
		Underfunded:   o.Underfunded,
		SettledAt:     o.SettledAt,
	}
	for _, rb := range o.Revealed {
		oj.Revealed = append(oj.Revealed, revealedBidJSON{Participant: rb.Participant, Bid: FormatAmount(rb.Bid)})
	}
	return json.Marshal(oj)
}

func (o *Outcome) UnmarshalJSON(bz []byte) error {
	var oj outcomeJSON
	if err := json.Unmarshal(bz, &oj); err != nil {
		return err
	}
	winning, err := ParseAmount(oj.WinningBid)
	if err != nil {
		return err
	}
	price, err := ParseAmount(oj.ClearingPrice)
	if err != nil {
		return err
	}
	revealed := make([]RevealedBid, 0, len(oj.Revealed))
	for _, rb := range oj.Revealed {
		bid, err := ParseAmount(rb.Bid)
		if err != nil {
			return err
		}
		revealed = append(revealed, RevealedBid{Participant: rb.Participant, Bid: bid})
	}
	*o = Outcome{
		Round:         oj.Round,
		EnergyAmount:  oj.EnergyAmount,
		Winner:        oj.Winner,
		WinningBid:    winning,
		ClearingPrice: price,
		Bidders:       oj.Bidders,
		Revealed:      revealed,
		Forfeited:     oj.Forfeited,
		Underfunded:   oj.Underfunded,
		SettledAt:     oj.SettledAt,
	}
	return nil
}
