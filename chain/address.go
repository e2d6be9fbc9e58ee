package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte account or contract address in 0x-hex form. The
// original casing (e.g. an EIP-55 checksum) is preserved for display; it is
// never significant for comparison.
type Address string

// ParseAddress validates s as a 0x-prefixed 40 hex digit address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") || !common.IsHexAddress(s) {
		return "", fmt.Errorf("address %q: want 0x followed by 40 hex digits", s)
	}
	return Address(s), nil
}

// FromCommon returns the EIP-55 checksummed form of a.
func FromCommon(a common.Address) Address {
	return Address(a.Hex())
}

// Common returns a as a 20-byte address. Invalid input yields a
// best-effort value; validate with ParseAddress first.
func (a Address) Common() common.Address {
	return common.HexToAddress(string(a))
}

// Equal compares two addresses case-insensitively.
func (a Address) Equal(b Address) bool {
	return strings.EqualFold(string(a), string(b))
}

func (a Address) String() string { return string(a) }
