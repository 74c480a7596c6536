package meridian

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/meridianxyz/exchange-sdk-go/chain"
)

// UnhashedOrderFromJSON parses a wire order's fields into the typed
// representation without touching hash or signature state.
func UnhashedOrderFromJSON(oj *OrderJSON) (*chain.UnhashedOrder, error) {
	o := &chain.UnhashedOrder{}
	var err error

	if o.Exchange, err = parseAddress("exchange", oj.Exchange); err != nil {
		return nil, err
	}
	if o.Maker, err = parseAddress("maker", oj.Maker); err != nil {
		return nil, err
	}
	if o.Taker, err = parseAddress("taker", oj.Taker); err != nil {
		return nil, err
	}
	if o.FeeRecipient, err = parseAddress("feeRecipient", oj.FeeRecipient); err != nil {
		return nil, err
	}
	if o.Target, err = parseAddress("target", oj.Target); err != nil {
		return nil, err
	}
	if o.StaticTarget, err = parseAddress("staticTarget", oj.StaticTarget); err != nil {
		return nil, err
	}
	if o.PaymentToken, err = parseAddress("paymentToken", oj.PaymentToken); err != nil {
		return nil, err
	}

	if o.MakerRelayerFee, err = parseBigInt("makerRelayerFee", oj.MakerRelayerFee); err != nil {
		return nil, err
	}
	if o.TakerRelayerFee, err = parseBigInt("takerRelayerFee", oj.TakerRelayerFee); err != nil {
		return nil, err
	}
	if o.MakerProtocolFee, err = parseBigInt("makerProtocolFee", oj.MakerProtocolFee); err != nil {
		return nil, err
	}
	if o.TakerProtocolFee, err = parseBigInt("takerProtocolFee", oj.TakerProtocolFee); err != nil {
		return nil, err
	}
	if o.BasePrice, err = parseBigInt("basePrice", oj.BasePrice); err != nil {
		return nil, err
	}
	if o.Extra, err = parseBigInt("extra", oj.Extra); err != nil {
		return nil, err
	}
	if o.ListingTime, err = parseBigInt("listingTime", oj.ListingTime); err != nil {
		return nil, err
	}
	if o.ExpirationTime, err = parseBigInt("expirationTime", oj.ExpirationTime); err != nil {
		return nil, err
	}
	if o.Salt, err = parseBigInt("salt", oj.Salt); err != nil {
		return nil, err
	}

	if oj.FeeMethod < 0 || oj.FeeMethod > int(chain.FeeMethodSplitFee) {
		return nil, &chain.InvalidFieldError{Field: "feeMethod", Reason: fmt.Sprintf("unknown value %d", oj.FeeMethod)}
	}
	o.FeeMethod = chain.FeeMethod(oj.FeeMethod)
	if oj.Side < 0 || oj.Side > int(chain.SideSell) {
		return nil, &chain.InvalidFieldError{Field: "side", Reason: fmt.Sprintf("unknown value %d", oj.Side)}
	}
	o.Side = chain.Side(oj.Side)
	if oj.SaleKind < 0 || oj.SaleKind > int(chain.SaleKindDutchAuction) {
		return nil, &chain.InvalidFieldError{Field: "saleKind", Reason: fmt.Sprintf("unknown value %d", oj.SaleKind)}
	}
	o.SaleKind = chain.SaleKind(oj.SaleKind)
	if oj.HowToCall < 0 || oj.HowToCall > int(chain.HowToCallDelegateCall) {
		return nil, &chain.InvalidFieldError{Field: "howToCall", Reason: fmt.Sprintf("unknown value %d", oj.HowToCall)}
	}
	o.HowToCall = chain.HowToCall(oj.HowToCall)

	if o.Calldata, err = parseBytes("calldata", oj.Calldata); err != nil {
		return nil, err
	}
	if o.ReplacementPattern, err = parseBytes("replacementPattern", oj.ReplacementPattern); err != nil {
		return nil, err
	}
	if o.StaticExtradata, err = parseBytes("staticExtradata", oj.StaticExtradata); err != nil {
		return nil, err
	}

	if oj.Metadata != nil {
		meta, err := metadataFromJSON(oj.Metadata)
		if err != nil {
			return nil, err
		}
		o.Metadata = *meta
	}

	return o, nil
}

// UnsignedOrderFromJSON parses a wire order and computes its canonical hash.
// When the wire order embeds a hash it must agree with the computed one; a
// divergence means the order was produced against different hashing rules
// and is rejected rather than silently rehashed.
func UnsignedOrderFromJSON(oj *OrderJSON) (*chain.UnsignedOrder, error) {
	unhashed, err := UnhashedOrderFromJSON(oj)
	if err != nil {
		return nil, err
	}

	unsigned, err := chain.NewUnsignedOrder(unhashed)
	if err != nil {
		return nil, err
	}

	if oj.Hash != "" {
		embedded := common.HexToHash(oj.Hash)
		if embedded != unsigned.Hash {
			return nil, &chain.InvalidFieldError{
				Field:  "hash",
				Reason: fmt.Sprintf("embedded hash %s does not match computed hash %s", embedded.Hex(), unsigned.Hash.Hex()),
			}
		}
	}

	return unsigned, nil
}

// OrderFromJSON parses a signed wire order. The signature's presence is
// structural here; cryptographic verification happens at match time.
func OrderFromJSON(oj *OrderJSON) (*chain.Order, error) {
	unsigned, err := UnsignedOrderFromJSON(oj)
	if err != nil {
		return nil, err
	}

	if oj.V == nil || oj.R == "" || oj.S == "" {
		return nil, ErrMissingSignature
	}
	if *oj.V < 0 || *oj.V > 255 {
		return nil, &chain.InvalidFieldError{Field: "v", Reason: fmt.Sprintf("out of range value %d", *oj.V)}
	}

	return &chain.Order{
		UnsignedOrder: *unsigned,
		V:             uint8(*oj.V),
		R:             common.HexToHash(oj.R),
		S:             common.HexToHash(oj.S),
	}, nil
}

// OrderToJSON serializes a signed order to its wire representation.
func OrderToJSON(o *chain.Order) *OrderJSON {
	oj := UnsignedOrderToJSON(&o.UnsignedOrder)
	if o.Signed() {
		v := int(o.V)
		oj.V = &v
		oj.R = o.R.Hex()
		oj.S = o.S.Hex()
	}
	return oj
}

// UnsignedOrderToJSON serializes a hashed, unsigned order to its wire
// representation.
func UnsignedOrderToJSON(o *chain.UnsignedOrder) *OrderJSON {
	oj := &OrderJSON{
		Exchange: formatAddress(o.Exchange),
		Maker:    formatAddress(o.Maker),
		Taker:    formatAddress(o.Taker),

		MakerRelayerFee:  o.MakerRelayerFee.String(),
		TakerRelayerFee:  o.TakerRelayerFee.String(),
		MakerProtocolFee: o.MakerProtocolFee.String(),
		TakerProtocolFee: o.TakerProtocolFee.String(),
		FeeRecipient:     formatAddress(o.FeeRecipient),
		FeeMethod:        int(o.FeeMethod),

		Side:      int(o.Side),
		SaleKind:  int(o.SaleKind),
		Target:    formatAddress(o.Target),
		HowToCall: int(o.HowToCall),

		Calldata:           hexutil.Encode(o.Calldata),
		ReplacementPattern: hexutil.Encode(o.ReplacementPattern),
		StaticTarget:       formatAddress(o.StaticTarget),
		StaticExtradata:    hexutil.Encode(o.StaticExtradata),

		PaymentToken: formatAddress(o.PaymentToken),
		BasePrice:    o.BasePrice.String(),
		Extra:        o.Extra.String(),

		ListingTime:    o.ListingTime.String(),
		ExpirationTime: o.ExpirationTime.String(),
		Salt:           o.Salt.String(),

		Hash: o.Hash.Hex(),
	}

	if o.Metadata.Schema != "" {
		oj.Metadata = metadataToJSON(&o.Metadata)
	}

	return oj
}

func metadataFromJSON(mj *OrderMetadataJSON) (*chain.OrderMetadata, error) {
	meta := &chain.OrderMetadata{Schema: chain.SchemaName(mj.Schema)}

	tokenID, ok := new(big.Int).SetString(mj.Asset.ID, 10)
	if !ok {
		return nil, &chain.InvalidFieldError{Field: "metadata.asset.id", Reason: "not a decimal integer"}
	}
	meta.Asset.TokenID = tokenID

	addr, err := parseAddress("metadata.asset.address", mj.Asset.Address)
	if err != nil {
		return nil, err
	}
	meta.Asset.Address = addr

	if mj.Asset.Quantity != "" {
		quantity, ok := new(big.Int).SetString(mj.Asset.Quantity, 10)
		if !ok {
			return nil, &chain.InvalidFieldError{Field: "metadata.asset.quantity", Reason: "not a decimal integer"}
		}
		meta.Asset.Quantity = quantity
	}

	return meta, nil
}

func metadataToJSON(meta *chain.OrderMetadata) *OrderMetadataJSON {
	mj := &OrderMetadataJSON{Schema: string(meta.Schema)}
	if meta.Asset.TokenID != nil {
		mj.Asset.ID = meta.Asset.TokenID.String()
	}
	mj.Asset.Address = formatAddress(meta.Asset.Address)
	if meta.Asset.Quantity != nil {
		mj.Asset.Quantity = meta.Asset.Quantity.String()
	}
	return mj
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, &chain.InvalidFieldError{Field: field, Reason: fmt.Sprintf("not a hex address: %q", value)}
	}
	return common.HexToAddress(value), nil
}

func parseBigInt(field, value string) (*big.Int, error) {
	if value == "" {
		return nil, &chain.InvalidFieldError{Field: field, Reason: "missing"}
	}
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, &chain.InvalidFieldError{Field: field, Reason: fmt.Sprintf("not a decimal integer: %q", value)}
	}
	return n, nil
}

func parseBytes(field, value string) ([]byte, error) {
	if value == "" || value == "0x" {
		return []byte{}, nil
	}
	data, err := hexutil.Decode(value)
	if err != nil {
		return nil, &chain.InvalidFieldError{Field: field, Reason: fmt.Sprintf("not hex bytes: %v", err)}
	}
	return data, nil
}

func formatAddress(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
