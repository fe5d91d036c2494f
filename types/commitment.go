package types

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// SealBid 计算密封出价 keccak256(bid(32字节大端) || nonce)
// 与合约中 keccak256(abi.encodePacked(uint256, string)) 一致
func SealBid(bid *uint256.Int, nonce string) common.Hash {
	value := AmountOrZero(bid).Bytes32()
	return crypto.Keccak256Hash(value[:], []byte(nonce))
}

// Commitment - 参与者在Bidding阶段提交的密封出价，一个参与者每轮只能有一个
// 存储后不可变
type Commitment struct {
	Round       RoundID      `json:"round"`
	Participant Address      `json:"participant"`
	Hash        common.Hash  `json:"hash"`
	Escrow      *uint256.Int `json:"-"`
	Timestamp   time.Time    `json:"timestamp"`
}

func (c *Commitment) ValidateBasic() error {
	if c.Participant.IsZero() {
		return fmt.Errorf("%w: participant is empty", ErrInvalidCommitment)
	}
	if c.Hash == (common.Hash{}) {
		return ErrInvalidCommitment
	}
	if c.Escrow == nil || c.Escrow.IsZero() {
		return ErrInvalidEscrow
	}
	return nil
}

// Reveal - 揭示阶段公开的出价和nonce
type Reveal struct {
	Round       RoundID      `json:"round"`
	Participant Address      `json:"participant"`
	Bid         *uint256.Int `json:"-"`
	Nonce       string       `json:"nonce"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Matches 揭示的(bid, nonce)能否还原出承诺的hash
func (r *Reveal) Matches(c *Commitment) bool {
	if c == nil {
		return false
	}
	return SealBid(r.Bid, r.Nonce) == c.Hash
}
