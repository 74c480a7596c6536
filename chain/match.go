package chain

import (
	"math/big"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Exchange holds the verifying contract an SDK instance trades against and
// implements order matching against it. All methods are pure computations
// over their inputs; an Exchange is safe for concurrent use.
type Exchange struct {
	addr common.Address
}

// NewExchange creates an Exchange for the given verifying contract address.
func NewExchange(addr string) *Exchange {
	return &Exchange{addr: common.HexToAddress(addr)}
}

// Address returns the verifying contract address.
func (e *Exchange) Address() common.Address {
	return e.addr
}

// MakeMatchingOrder synthesizes the complementary order for account to fill
// an existing order. The synthesized side flips buy/sell, makes the filler
// the maker and the original maker the taker, and carries the trade terms
// (sale kind, target, call type, payment token, fee schedule, price delta,
// static guard) over unchanged. Its base price is the original order's price
// at now, so an auction fill reflects the live price rather than the stale
// listing price. Its calldata is the original calldata with the bytes the
// original's replacement pattern opened up filled in for account, and its own
// pattern opens up the original party's slot instead. The result carries its
// own canonical hash — never the hash of the order it complements — and no
// signature: the exchange authenticates the filler as the calling account.
func (e *Exchange) MakeMatchingOrder(o *UnsignedOrder, account common.Address, now time.Time) (*UnsignedOrder, error) {
	if o.ExpirationTime != nil && o.ExpirationTime.Sign() != 0 &&
		big.NewInt(now.Unix()).Cmp(o.ExpirationTime) > 0 {
		return nil, &ExpiredOrderError{Hash: o.Hash, ExpirationTime: o.ExpirationTime}
	}

	price, err := CurrentPrice(&o.UnhashedOrder, now)
	if err != nil {
		return nil, err
	}

	calldata, pattern, err := counterCalldata(o, account)
	if err != nil {
		return nil, err
	}

	counter := UnhashedOrder{
		Exchange: o.Exchange,
		Maker:    account,
		Taker:    o.Maker,

		MakerRelayerFee:  o.MakerRelayerFee,
		TakerRelayerFee:  o.TakerRelayerFee,
		MakerProtocolFee: o.MakerProtocolFee,
		TakerProtocolFee: o.TakerProtocolFee,
		FeeRecipient:     o.FeeRecipient,
		FeeMethod:        o.FeeMethod,

		Side:      o.Side.Opposite(),
		SaleKind:  o.SaleKind,
		Target:    o.Target,
		HowToCall: o.HowToCall,

		Calldata:           calldata,
		ReplacementPattern: pattern,
		StaticTarget:       o.StaticTarget,
		StaticExtradata:    o.StaticExtradata,

		PaymentToken: o.PaymentToken,
		BasePrice:    price,
		Extra:        o.Extra,

		ListingTime:    big.NewInt(now.Unix()),
		ExpirationTime: new(big.Int).Set(o.ExpirationTime),
		Salt:           GenerateSalt(),

		Metadata: o.Metadata,
	}

	return NewUnsignedOrder(&counter)
}

// counterCalldata builds the synthesized side's calldata and replacement
// pattern. The concrete counter-call names both parties; merging it through
// the original order's pattern substitutes the filler into exactly the bytes
// the maker opened up and rejects any other divergence.
func counterCalldata(o *UnsignedOrder, account common.Address) ([]byte, []byte, error) {
	var full []byte
	var err error
	var freeArg int

	if o.Side == SideSell {
		// Filling a sell: the asset moves maker -> account, and the
		// synthesized buy side leaves the sender word open.
		full, err = EncodeTransfer(o.Metadata, o.Maker, account)
		freeArg = 0
	} else {
		// Filling a buy: the asset moves account -> maker, and the
		// synthesized sell side leaves the recipient word open.
		full, err = EncodeTransfer(o.Metadata, account, o.Maker)
		freeArg = 1
	}
	if err != nil {
		return nil, nil, err
	}

	merged, err := MergeCalldata(o.Calldata, full, o.ReplacementPattern)
	if err != nil {
		return nil, nil, err
	}

	return merged, addressReplacementPattern(len(merged), freeArg), nil
}

// ValidateMatch checks that a candidate (buy, sell) pair is a legal match on
// this exchange. Checks run in a fixed order and the first failure is
// returned as a *MatchError naming the reason; nil means the pair can match.
func (e *Exchange) ValidateMatch(buy, sell *Order, now time.Time) error {
	if buy.Side != SideBuy {
		return &MatchError{Reason: "first order is not buy-side"}
	}
	if sell.Side != SideSell {
		return &MatchError{Reason: "second order is not sell-side"}
	}

	if buy.Exchange != sell.Exchange {
		return &MatchError{Reason: "orders target different exchange contracts"}
	}
	if buy.Exchange != e.addr {
		return &MatchError{Reason: "orders do not target the configured exchange contract"}
	}

	if buy.PaymentToken != sell.PaymentToken {
		return &MatchError{Reason: "payment tokens differ"}
	}

	if err := matchCalldata(buy, sell); err != nil {
		return &MatchError{Reason: "calldata incompatible", Err: err}
	}

	if !withinListingWindow(&buy.UnhashedOrder, now) {
		return &MatchError{Reason: "buy order outside its listing window"}
	}
	if !withinListingWindow(&sell.UnhashedOrder, now) {
		return &MatchError{Reason: "sell order outside its listing window"}
	}

	buyPrice, err := CurrentPrice(&buy.UnhashedOrder, now)
	if err != nil {
		return &MatchError{Reason: "buy price unavailable", Err: err}
	}
	sellPrice, err := CurrentPrice(&sell.UnhashedOrder, now)
	if err != nil {
		return &MatchError{Reason: "sell price unavailable", Err: err}
	}
	if buyPrice.Cmp(sellPrice) < 0 {
		return &MatchError{Reason: "no clearing price: buy price below sell price"}
	}

	if !buy.Signed() && !sell.Signed() {
		return &MatchError{Reason: "no signed order in pair", Err: ErrUnsignedPair}
	}
	if buy.Signed() {
		if err := VerifyOrder(buy); err != nil {
			return &MatchError{Reason: "buy order signature invalid", Err: err}
		}
	}
	if sell.Signed() {
		if err := VerifyOrder(sell); err != nil {
			return &MatchError{Reason: "sell order signature invalid", Err: err}
		}
	}

	return nil
}

// CanMatch is the boolean fast path of ValidateMatch.
func (e *Exchange) CanMatch(buy, sell *Order, now time.Time) bool {
	return e.ValidateMatch(buy, sell, now) == nil
}

// matchCalldata checks the two orders' calldata for compatibility the way the
// exchange contract does: each side's replacement pattern fills its open
// bytes from the counterparty, and the two substituted buffers must then be
// byte-identical. The first divergence is reported with its offset.
func matchCalldata(buy, sell *Order) error {
	if len(buy.Calldata) != len(sell.Calldata) {
		return &InvalidFieldError{Field: "calldata", Reason: "buy and sell calldata lengths differ"}
	}

	mergedBuy := guardedReplace(buy.Calldata, sell.Calldata, buy.ReplacementPattern)
	mergedSell := guardedReplace(sell.Calldata, buy.Calldata, sell.ReplacementPattern)

	for i := range mergedBuy {
		if mergedBuy[i] != mergedSell[i] {
			return &CalldataMismatchError{Offset: i}
		}
	}
	return nil
}

// GenerateSalt returns a random 128-bit order salt.
func GenerateSalt() *big.Int {
	salt := new(big.Int).Lsh(new(big.Int).SetUint64(rand.Uint64()), 64)
	return salt.Or(salt, new(big.Int).SetUint64(rand.Uint64()))
}
