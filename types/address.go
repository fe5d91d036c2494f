package types

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Address 参与者身份，20字节，与链上地址等价
type Address common.Address

var ZeroAddress = Address{}

// ParseAddress 解析0x开头的十六进制地址
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return ZeroAddress, fmt.Errorf("invalid participant address %q", s)
	}
	return Address(common.HexToAddress(s)), nil
}

func BytesToAddress(b []byte) Address {
	return Address(common.BytesToAddress(b))
}

func (addr Address) Equal(other Address) bool {
	return addr == other
}

// Less 按字节序比较，用于平局时的确定性裁决：地址小者胜
func (addr Address) Less(other Address) bool {
	return bytes.Compare(addr[:], other[:]) < 0
}

func (addr Address) IsZero() bool {
	return addr == ZeroAddress
}

func (addr Address) Hex() string {
	return common.Address(addr).Hex()
}

func (addr Address) String() string {
	return addr.Hex()
}

func (addr Address) MarshalText() ([]byte, error) {
	return []byte(addr.Hex()), nil
}

func (addr *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*addr = parsed
	return nil
}

func (addr Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addr.Hex())
}

func (addr *Address) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	return addr.UnmarshalText([]byte(s))
}
