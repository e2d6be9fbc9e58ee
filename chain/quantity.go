package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseQuantity decodes a 0x-prefixed hex quantity of at most 256 bits.
// "0x" alone and zero-padded digits are accepted, as some nodes and wallets
// emit them.
func ParseQuantity(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("quantity %q: missing 0x prefix", s)
	}
	digits := strings.TrimLeft(s[2:], "0")
	if digits == "" {
		return new(big.Int), nil
	}
	v, err := hexutil.DecodeBig("0x" + digits)
	if err != nil {
		return nil, fmt.Errorf("quantity %q: %w", s, err)
	}
	return v, nil
}

// ParseChainID decodes a hex chain id.
func ParseChainID(s string) (uint64, error) {
	v, err := ParseQuantity(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("chain id %q overflows uint64", s)
	}
	return v.Uint64(), nil
}

// FormatQuantity encodes v as a 0x-prefixed hex quantity.
func FormatQuantity(v *big.Int) string {
	return hexutil.EncodeBig(v)
}

// FormatUnits renders v scaled down by 10^decimals as a decimal string with
// at least one fractional digit ("20.0", "1.5", "0.000000001").
func FormatUnits(v *big.Int, decimals int) string {
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	fracStr := ""
	if decimals > 0 {
		digits := frac.String()
		if pad := decimals - len(digits); pad > 0 {
			digits = strings.Repeat("0", pad) + digits
		}
		fracStr = strings.TrimRight(digits, "0")
	}
	if fracStr == "" {
		fracStr = "0"
	}
	out := whole.String() + "." + fracStr
	if neg {
		out = "-" + out
	}
	return out
}

// GweiDecimals is the exponent between wei and gwei.
const GweiDecimals = 9
