package chain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// InverseBasisPoints is the denominator of all basis-point fee fields.
const InverseBasisPoints = 10000

// FeeBreakdown reports the fees due on an order at its current price, in
// payment-token base units. Division by the basis-point denominator is exact
// in decimal arithmetic, so no precision is lost before display.
type FeeBreakdown struct {
	// MakerFee is the fee owed by the maker side.
	MakerFee decimal.Decimal
	// TakerFee is the fee owed by the taker side.
	TakerFee decimal.Decimal
	// TakerPays is the total the taker transfers: price plus any fee charged
	// on top.
	TakerPays decimal.Decimal
	// MakerReceives is what the maker nets after fees deducted from proceeds.
	MakerReceives decimal.Decimal
}

// Fees computes the fee breakdown of an order at the given time. Under
// FeeMethodProtocolFee both sides pay their fee on top of the price; under
// FeeMethodSplitFee the maker fee comes out of the proceeds and the taker fee
// goes on top.
func Fees(o *UnhashedOrder, now time.Time) (*FeeBreakdown, error) {
	price, err := CurrentPrice(o, now)
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name  string
		value *big.Int
	}{
		{"makerRelayerFee", o.MakerRelayerFee},
		{"takerRelayerFee", o.TakerRelayerFee},
		{"makerProtocolFee", o.MakerProtocolFee},
		{"takerProtocolFee", o.TakerProtocolFee},
	} {
		if f.value == nil || f.value.Sign() < 0 {
			return nil, &InvalidFieldError{Field: f.name, Reason: "missing or negative"}
		}
	}

	p := decimal.NewFromBigInt(price, 0)
	denominator := decimal.NewFromInt(InverseBasisPoints)

	makerBps := decimal.NewFromBigInt(new(big.Int).Add(o.MakerRelayerFee, o.MakerProtocolFee), 0)
	takerBps := decimal.NewFromBigInt(new(big.Int).Add(o.TakerRelayerFee, o.TakerProtocolFee), 0)

	makerFee := p.Mul(makerBps).Div(denominator)
	takerFee := p.Mul(takerBps).Div(denominator)

	breakdown := &FeeBreakdown{MakerFee: makerFee, TakerFee: takerFee}

	switch o.FeeMethod {
	case FeeMethodProtocolFee:
		// Both fees charged additively on top of the price; proceeds are whole.
		breakdown.TakerPays = p.Add(takerFee)
		breakdown.MakerReceives = p
	case FeeMethodSplitFee:
		// Maker fee deducted from proceeds, taker fee added on top.
		breakdown.TakerPays = p.Add(takerFee)
		breakdown.MakerReceives = p.Sub(makerFee)
	default:
		return nil, &InvalidFieldError{Field: "feeMethod", Reason: fmt.Sprintf("unknown value %d", o.FeeMethod)}
	}

	return breakdown, nil
}
