package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Side represents the side of an order
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// SaleKind represents the pricing scheme of an order
type SaleKind uint8

const (
	SaleKindFixedPrice SaleKind = iota
	SaleKindDutchAuction
)

// FeeMethod represents how fees are charged on a settled order
type FeeMethod uint8

const (
	// FeeMethodProtocolFee charges both sides their fee on top of the price.
	FeeMethodProtocolFee FeeMethod = iota
	// FeeMethodSplitFee deducts the maker fee from proceeds and charges the
	// taker fee on top.
	FeeMethodSplitFee
)

// HowToCall represents the call type the exchange uses against the target
type HowToCall uint8

const (
	HowToCallCall HowToCall = iota
	HowToCallDelegateCall
)

// SchemaName identifies the token standard of the asset referenced by an order
type SchemaName string

const (
	SchemaERC721  SchemaName = "ERC721"
	SchemaERC1155 SchemaName = "ERC1155"
)

// Asset identifies a token held by some contract
type Asset struct {
	TokenID  *big.Int
	Address  common.Address
	Quantity *big.Int // nil or 1 for ERC721, transfer amount for ERC1155
}

// OrderMetadata describes the asset an order trades. It is informational:
// none of it enters the order hash.
type OrderMetadata struct {
	Asset  Asset
	Schema SchemaName
}

// UnhashedOrder holds every field that enters the canonical order hash,
// plus the informational metadata. An order in this state has not been
// hashed or signed yet.
type UnhashedOrder struct {
	Exchange common.Address
	Maker    common.Address
	Taker    common.Address

	MakerRelayerFee  *big.Int
	TakerRelayerFee  *big.Int
	MakerProtocolFee *big.Int
	TakerProtocolFee *big.Int
	FeeRecipient     common.Address
	FeeMethod        FeeMethod

	Side      Side
	SaleKind  SaleKind
	Target    common.Address
	HowToCall HowToCall

	Calldata           []byte
	ReplacementPattern []byte
	StaticTarget       common.Address
	StaticExtradata    []byte

	PaymentToken common.Address
	BasePrice    *big.Int
	Extra        *big.Int

	ListingTime    *big.Int
	ExpirationTime *big.Int
	Salt           *big.Int

	Metadata OrderMetadata
}

// UnsignedOrder is an order whose canonical hash has been computed but which
// carries no signature yet.
type UnsignedOrder struct {
	UnhashedOrder

	Hash common.Hash
}

// Order is a hashed order together with its maker's ECDSA signature.
// A synthesized matching order never carries a signature; its v/r/s stay
// zero because the exchange authenticates the filler as the calling account.
type Order struct {
	UnsignedOrder

	V uint8
	R common.Hash
	S common.Hash
}

// Signed reports whether the order carries a signature.
func (o *Order) Signed() bool {
	return o.V != 0 || o.R != (common.Hash{}) || o.S != (common.Hash{})
}
