package chain

import (
	"fmt"
	"math/big"
	"time"
)

// CurrentPrice computes the effective price of an order at the given time, in
// payment-token base units. Fixed-price orders always price at basePrice. A
// Dutch auction interpolates linearly between basePrice at listing time and
// basePrice minus (sell) or plus (buy) extra at expiration, clamped to those
// endpoints outside the window. All arithmetic is exact big-integer math with
// the same truncating division the exchange contract performs, so the result
// never drifts from the on-chain settlement price.
func CurrentPrice(o *UnhashedOrder, now time.Time) (*big.Int, error) {
	if o.BasePrice == nil || o.BasePrice.Sign() < 0 {
		return nil, &InvalidFieldError{Field: "basePrice", Reason: "missing or negative"}
	}

	switch o.SaleKind {
	case SaleKindFixedPrice:
		return new(big.Int).Set(o.BasePrice), nil

	case SaleKindDutchAuction:
		return auctionPrice(o, now)

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSaleKind, o.SaleKind)
	}
}

func auctionPrice(o *UnhashedOrder, now time.Time) (*big.Int, error) {
	if o.ListingTime == nil || o.ExpirationTime == nil {
		return nil, &InvalidFieldError{Field: "listingTime", Reason: "auction requires listing and expiration times"}
	}
	if o.ExpirationTime.Sign() == 0 {
		return nil, &InvalidFieldError{Field: "expirationTime", Reason: "auction cannot be open-ended"}
	}
	if o.Extra == nil || o.Extra.Sign() < 0 {
		return nil, &InvalidFieldError{Field: "extra", Reason: "missing or negative"}
	}
	if o.Side == SideSell && o.Extra.Cmp(o.BasePrice) > 0 {
		return nil, &InvalidFieldError{Field: "extra", Reason: "price delta exceeds base price"}
	}

	duration := new(big.Int).Sub(o.ExpirationTime, o.ListingTime)
	if duration.Sign() <= 0 {
		return nil, &InvalidFieldError{Field: "expirationTime", Reason: "auction window is empty"}
	}

	elapsed := new(big.Int).Sub(big.NewInt(now.Unix()), o.ListingTime)

	var diff *big.Int
	switch {
	case elapsed.Sign() <= 0:
		diff = new(big.Int)
	case elapsed.Cmp(duration) >= 0:
		diff = new(big.Int).Set(o.Extra)
	default:
		// extra * elapsed / duration, truncated like the contract
		diff = new(big.Int).Mul(o.Extra, elapsed)
		diff.Div(diff, duration)
	}

	if o.Side == SideSell {
		return new(big.Int).Sub(o.BasePrice, diff), nil
	}
	return new(big.Int).Add(o.BasePrice, diff), nil
}

// withinListingWindow reports whether an order can settle at the given time:
// its listing time has been reached and it has not expired. A zero expiration
// time means the order never expires.
func withinListingWindow(o *UnhashedOrder, now time.Time) bool {
	t := big.NewInt(now.Unix())
	if o.ListingTime != nil && o.ListingTime.Cmp(t) > 0 {
		return false
	}
	if o.ExpirationTime != nil && o.ExpirationTime.Sign() != 0 && t.Cmp(o.ExpirationTime) >= 0 {
		return false
	}
	return true
}
