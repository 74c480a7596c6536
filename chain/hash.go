package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// orderArguments is the ABI layout of the on-chain order struct. Field order
// must stay byte-for-byte aligned with the exchange contract's hashOrder.
var orderArguments = buildOrderArguments()

var maxUint256 = new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil)

func buildOrderArguments() abi.Arguments {
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		panic("failed to build address type: " + err.Error())
	}
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic("failed to build uint256 type: " + err.Error())
	}
	uint8Type, err := abi.NewType("uint8", "", nil)
	if err != nil {
		panic("failed to build uint8 type: " + err.Error())
	}
	bytesType, err := abi.NewType("bytes", "", nil)
	if err != nil {
		panic("failed to build bytes type: " + err.Error())
	}

	return abi.Arguments{
		{Type: addressType}, // exchange
		{Type: addressType}, // maker
		{Type: addressType}, // taker
		{Type: uint256Type}, // makerRelayerFee
		{Type: uint256Type}, // takerRelayerFee
		{Type: uint256Type}, // makerProtocolFee
		{Type: uint256Type}, // takerProtocolFee
		{Type: addressType}, // feeRecipient
		{Type: uint8Type},   // feeMethod
		{Type: uint8Type},   // side
		{Type: uint8Type},   // saleKind
		{Type: addressType}, // target
		{Type: uint8Type},   // howToCall
		{Type: bytesType},   // calldata
		{Type: bytesType},   // replacementPattern
		{Type: addressType}, // staticTarget
		{Type: bytesType},   // staticExtradata
		{Type: addressType}, // paymentToken
		{Type: uint256Type}, // basePrice
		{Type: uint256Type}, // extra
		{Type: uint256Type}, // listingTime
		{Type: uint256Type}, // expirationTime
		{Type: uint256Type}, // salt
	}
}

// HashOrder computes the canonical hash of an order: the keccak256 digest of
// its hashed fields ABI-encoded in contract struct order. It never consults
// signature state; metadata does not enter the digest.
func HashOrder(o *UnhashedOrder) (common.Hash, error) {
	if err := validateOrderFields(o); err != nil {
		return common.Hash{}, err
	}

	encoded, err := orderArguments.Pack(
		o.Exchange,
		o.Maker,
		o.Taker,
		o.MakerRelayerFee,
		o.TakerRelayerFee,
		o.MakerProtocolFee,
		o.TakerProtocolFee,
		o.FeeRecipient,
		uint8(o.FeeMethod),
		uint8(o.Side),
		uint8(o.SaleKind),
		o.Target,
		uint8(o.HowToCall),
		o.Calldata,
		o.ReplacementPattern,
		o.StaticTarget,
		o.StaticExtradata,
		o.PaymentToken,
		o.BasePrice,
		o.Extra,
		o.ListingTime,
		o.ExpirationTime,
		o.Salt,
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode order: %w", err)
	}

	return crypto.Keccak256Hash(encoded), nil
}

// HashToSign wraps an order hash in the standard signed-message envelope.
// This is the digest makers actually sign and the digest signatures are
// recovered against.
func HashToSign(orderHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(
		[]byte("\x19Ethereum Signed Message:\n32"),
		orderHash.Bytes(),
	)
}

// NewUnsignedOrder validates an unhashed order, computes its hash and returns
// the hashed form. The input is not mutated.
func NewUnsignedOrder(o *UnhashedOrder) (*UnsignedOrder, error) {
	hash, err := HashOrder(o)
	if err != nil {
		return nil, err
	}
	return &UnsignedOrder{UnhashedOrder: *o, Hash: hash}, nil
}

func validateOrderFields(o *UnhashedOrder) error {
	uints := []struct {
		name  string
		value *big.Int
	}{
		{"makerRelayerFee", o.MakerRelayerFee},
		{"takerRelayerFee", o.TakerRelayerFee},
		{"makerProtocolFee", o.MakerProtocolFee},
		{"takerProtocolFee", o.TakerProtocolFee},
		{"basePrice", o.BasePrice},
		{"extra", o.Extra},
		{"listingTime", o.ListingTime},
		{"expirationTime", o.ExpirationTime},
		{"salt", o.Salt},
	}
	for _, f := range uints {
		if f.value == nil {
			return &InvalidFieldError{Field: f.name, Reason: "missing"}
		}
		if f.value.Sign() < 0 {
			return &InvalidFieldError{Field: f.name, Reason: "negative"}
		}
		if f.value.Cmp(maxUint256) >= 0 {
			return &InvalidFieldError{Field: f.name, Reason: "exceeds uint256"}
		}
	}

	if o.FeeMethod > FeeMethodSplitFee {
		return &InvalidFieldError{Field: "feeMethod", Reason: fmt.Sprintf("unknown value %d", o.FeeMethod)}
	}
	if o.Side > SideSell {
		return &InvalidFieldError{Field: "side", Reason: fmt.Sprintf("unknown value %d", o.Side)}
	}
	if o.SaleKind > SaleKindDutchAuction {
		return &InvalidFieldError{Field: "saleKind", Reason: fmt.Sprintf("unknown value %d", o.SaleKind)}
	}
	if o.HowToCall > HowToCallDelegateCall {
		return &InvalidFieldError{Field: "howToCall", Reason: fmt.Sprintf("unknown value %d", o.HowToCall)}
	}

	if len(o.ReplacementPattern) != len(o.Calldata) {
		return &InvalidFieldError{
			Field:  "replacementPattern",
			Reason: fmt.Sprintf("length %d does not match calldata length %d", len(o.ReplacementPattern), len(o.Calldata)),
		}
	}

	if o.ExpirationTime.Sign() != 0 && o.ListingTime.Cmp(o.ExpirationTime) > 0 {
		return &InvalidFieldError{Field: "listingTime", Reason: "after expiration time"}
	}

	return nil
}
