package meridian

import (
	"encoding/json"
	"math/big"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianxyz/exchange-sdk-go/chain"
)

func loadOrderFixture(t *testing.T) *OrderJSON {
	t.Helper()

	data, err := os.ReadFile("testdata/sell_order.json")
	require.NoError(t, err)

	var oj OrderJSON
	require.NoError(t, json.Unmarshal(data, &oj))
	return &oj
}

func TestUnsignedOrderFromJSONFixture(t *testing.T) {
	oj := loadOrderFixture(t)

	unsigned, err := UnsignedOrderFromJSON(oj)
	require.NoError(t, err)

	// The computed canonical hash agrees with the hash the fixture embeds.
	assert.Equal(t, oj.Hash, unsigned.Hash.Hex())

	assert.Equal(t, chain.SideSell, unsigned.Side)
	assert.Equal(t, chain.SaleKindFixedPrice, unsigned.SaleKind)
	assert.Equal(t, "1000000000000000000", unsigned.BasePrice.String())
	assert.Equal(t, chain.SchemaERC721, unsigned.Metadata.Schema)
	assert.Equal(t, "8675309", unsigned.Metadata.Asset.TokenID.String())
}

func TestUnsignedOrderFromJSONHashMismatch(t *testing.T) {
	oj := loadOrderFixture(t)
	oj.Hash = "0x00000000000000000000000000000000000000000000000000000000000000ff"

	_, err := UnsignedOrderFromJSON(oj)
	var fieldErr *chain.InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "hash", fieldErr.Field)
}

func TestUnsignedOrderFromJSONWithoutHash(t *testing.T) {
	oj := loadOrderFixture(t)
	oj.Hash = ""

	unsigned, err := UnsignedOrderFromJSON(oj)
	require.NoError(t, err)
	assert.Equal(t, loadOrderFixture(t).Hash, unsigned.Hash.Hex())
}

func TestOrderFromJSONMissingSignature(t *testing.T) {
	oj := loadOrderFixture(t)

	_, err := OrderFromJSON(oj)
	require.ErrorIs(t, err, ErrMissingSignature)
}

func TestUnhashedOrderFromJSONInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OrderJSON)
	}{
		{"bad maker address", func(oj *OrderJSON) { oj.Maker = "zzz" }},
		{"bad base price", func(oj *OrderJSON) { oj.BasePrice = "1.5e18" }},
		{"missing salt", func(oj *OrderJSON) { oj.Salt = "" }},
		{"side out of range", func(oj *OrderJSON) { oj.Side = 3 }},
		{"fee method out of range", func(oj *OrderJSON) { oj.FeeMethod = 9 }},
		{"bad calldata hex", func(oj *OrderJSON) { oj.Calldata = "0xzz" }},
		{"bad metadata token id", func(oj *OrderJSON) { oj.Metadata.Asset.ID = "abc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oj := loadOrderFixture(t)
			tt.mutate(oj)

			_, err := UnhashedOrderFromJSON(oj)
			var fieldErr *chain.InvalidFieldError
			require.ErrorAs(t, err, &fieldErr)
		})
	}
}

func TestOrderJSONRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := chain.NewSignerFromKey(key)

	oj := loadOrderFixture(t)
	oj.Hash = ""
	unhashed, err := UnhashedOrderFromJSON(oj)
	require.NoError(t, err)
	unhashed.Maker = signer.Address()

	// Rebuild calldata so it names the actual maker.
	calldata, pattern, err := chain.EncodeSell(unhashed.Metadata, signer.Address())
	require.NoError(t, err)
	unhashed.Calldata = calldata
	unhashed.ReplacementPattern = pattern

	unsigned, err := chain.NewUnsignedOrder(unhashed)
	require.NoError(t, err)
	order, err := signer.SignOrder(unsigned)
	require.NoError(t, err)

	// Serialize, push through real JSON, parse back.
	wire, err := json.Marshal(OrderToJSON(order))
	require.NoError(t, err)

	var parsed OrderJSON
	require.NoError(t, json.Unmarshal(wire, &parsed))
	restored, err := OrderFromJSON(&parsed)
	require.NoError(t, err)

	assert.Equal(t, order.Hash, restored.Hash)
	assert.Equal(t, order.Maker, restored.Maker)
	assert.Equal(t, order.V, restored.V)
	assert.Equal(t, order.R, restored.R)
	assert.Equal(t, order.S, restored.S)
	assert.Equal(t, order.Metadata, restored.Metadata)

	require.NoError(t, chain.VerifyOrder(restored))
}

func TestUnsignedOrderToJSONFormats(t *testing.T) {
	oj := loadOrderFixture(t)
	unsigned, err := UnsignedOrderFromJSON(oj)
	require.NoError(t, err)

	out := UnsignedOrderToJSON(unsigned)
	assert.Equal(t, oj.Maker, out.Maker)
	assert.Equal(t, oj.Calldata, out.Calldata)
	assert.Equal(t, oj.ReplacementPattern, out.ReplacementPattern)
	assert.Equal(t, oj.BasePrice, out.BasePrice)
	assert.Equal(t, oj.Salt, out.Salt)
	assert.Equal(t, oj.Hash, out.Hash)
	assert.Nil(t, out.V)
}

func TestMetadataQuantityRoundTrip(t *testing.T) {
	oj := loadOrderFixture(t)
	oj.Hash = ""
	oj.Metadata.Schema = string(chain.SchemaERC1155)
	oj.Metadata.Asset.Quantity = "5"

	unhashed, err := UnhashedOrderFromJSON(oj)
	require.NoError(t, err)
	require.NotNil(t, unhashed.Metadata.Asset.Quantity)
	assert.Equal(t, big.NewInt(5), unhashed.Metadata.Asset.Quantity)
}
