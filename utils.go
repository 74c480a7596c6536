package meridian

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	MaxDecimals = 18
	ZeroAddress = "0x0000000000000000000000000000000000000000"
)

// WeiToDecimal converts a base-unit amount to a human-readable decimal with
// the given number of token decimals. The conversion is exact.
func WeiToDecimal(wei *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -decimals)
}

// DecimalToWei converts a human-readable amount to base units. Amounts with
// more fractional digits than the token carries are rejected rather than
// silently truncated.
func DecimalToWei(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, &InvalidParamError{Message: fmt.Sprintf("decimals must be between 0 and %d, got: %d", MaxDecimals, decimals)}
	}

	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, &InvalidParamError{Message: fmt.Sprintf("amount %s has more than %d decimal places", amount.String(), decimals)}
	}
	if shifted.Sign() < 0 {
		return nil, &InvalidParamError{Message: "amount must not be negative"}
	}

	return shifted.BigInt(), nil
}

// BasisPointsToRate converts a basis-point fee to its decimal rate, e.g.
// 250 bps -> 0.025.
func BasisPointsToRate(bps int64) decimal.Decimal {
	return decimal.New(bps, -4)
}
