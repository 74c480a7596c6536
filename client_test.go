package meridian

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianxyz/exchange-sdk-go/chain"
)

const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func newTestClient(t *testing.T, host string) *Client {
	t.Helper()

	client, err := NewClient(ClientConfig{
		Host:       host,
		ChainID:    ChainIDMainnet,
		PrivateKey: testPrivateKey,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientUnsupportedChain(t *testing.T) {
	_, err := NewClient(ClientConfig{ChainID: ChainID(999)})
	var paramErr *InvalidParamError
	require.ErrorAs(t, err, &paramErr)
}

func TestNewClientContractOverrides(t *testing.T) {
	override := "0x00000000000000000000000000000000000000aa"
	client, err := NewClient(ClientConfig{
		ChainID:      ChainIDMainnet,
		ExchangeAddr: override,
	})
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(override), client.Exchange().Address())
}

func TestNewClientInvalidKey(t *testing.T) {
	_, err := NewClient(ClientConfig{ChainID: ChainIDMainnet, PrivateKey: "nope"})
	require.Error(t, err)
}

func TestClientRequiresSigner(t *testing.T) {
	client, err := NewClient(ClientConfig{ChainID: ChainIDMainnet})
	require.NoError(t, err)

	_, err = client.CreateSellOrder(&OrderParams{})
	require.ErrorIs(t, err, ErrNoSigner)

	_, err = client.FulfillOrder(context.Background(), "0xabc")
	require.ErrorIs(t, err, ErrNoSigner)
}

func TestClientRequiresRPC(t *testing.T) {
	client := newTestClient(t, "")

	_, err := client.FulfillOrder(context.Background(), "0xabc")
	require.ErrorIs(t, err, ErrNoRPC)

	_, err = client.CancelOrder(context.Background(), &chain.Order{})
	require.ErrorIs(t, err, ErrNoRPC)
}

func testOrderParams() *OrderParams {
	return &OrderParams{
		Metadata: chain.OrderMetadata{
			Asset: chain.Asset{
				TokenID: big.NewInt(1337),
				Address: common.HexToAddress("0x06012c8cf97BEaD5deAe237070F9587f8E7A266d"),
			},
			Schema: chain.SchemaERC721,
		},
		BasePrice:       big.NewInt(1000000000000000000),
		MakerRelayerFee: big.NewInt(250),
		FeeMethod:       chain.FeeMethodSplitFee,
		ExpirationTime:  time.Now().Add(24 * time.Hour).Unix(),
	}
}

func TestCreateSellOrder(t *testing.T) {
	client := newTestClient(t, "")

	order, err := client.CreateSellOrder(testOrderParams())
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	maker := crypto.PubkeyToAddress(key.PublicKey)

	assert.Equal(t, chain.SideSell, order.Side)
	assert.Equal(t, maker, order.Maker)
	assert.Equal(t, client.Exchange().Address(), order.Exchange)
	assert.Equal(t, order.Metadata.Asset.Address, order.Target)
	assert.True(t, order.Signed())
	require.NoError(t, chain.VerifyOrder(order))

	// Defaults: open taker, zero optional fees, native payment token.
	assert.Equal(t, common.Address{}, order.Taker)
	assert.Equal(t, common.Address{}, order.PaymentToken)
	assert.Zero(t, order.TakerRelayerFee.Sign())
	assert.Zero(t, order.Extra.Sign())
	assert.NotZero(t, order.ListingTime.Sign())
}

func TestCreateSellOrdersGetDistinctSalts(t *testing.T) {
	client := newTestClient(t, "")
	params := testOrderParams()

	first, err := client.CreateSellOrder(params)
	require.NoError(t, err)
	second, err := client.CreateSellOrder(params)
	require.NoError(t, err)

	assert.NotEqual(t, first.Salt, second.Salt)
	assert.NotEqual(t, first.Hash, second.Hash)
}

func TestCreateBuyOrder(t *testing.T) {
	client := newTestClient(t, "")

	params := testOrderParams()
	params.PaymentToken = DefaultContractAddresses[ChainIDMainnet].WrappedNative

	order, err := client.CreateBuyOrder(params)
	require.NoError(t, err)

	assert.Equal(t, chain.SideBuy, order.Side)
	assert.Equal(t, common.HexToAddress(params.PaymentToken), order.PaymentToken)
	require.NoError(t, chain.VerifyOrder(order))
}

func TestCreateBuyOrderRequiresERC20(t *testing.T) {
	client := newTestClient(t, "")

	_, err := client.CreateBuyOrder(testOrderParams())
	var paramErr *InvalidParamError
	require.ErrorAs(t, err, &paramErr)

	params := testOrderParams()
	params.PaymentToken = ZeroAddress
	_, err = client.CreateBuyOrder(params)
	require.ErrorAs(t, err, &paramErr)
}

func TestCreateOrderRejectsBadPrice(t *testing.T) {
	client := newTestClient(t, "")

	params := testOrderParams()
	params.BasePrice = nil
	_, err := client.CreateSellOrder(params)
	var paramErr *InvalidParamError
	require.ErrorAs(t, err, &paramErr)

	params.BasePrice = big.NewInt(-5)
	_, err = client.CreateSellOrder(params)
	require.ErrorAs(t, err, &paramErr)
}

func TestClientPostOrder(t *testing.T) {
	var posted OrderJSON
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		require.NoError(t, json.NewEncoder(w).Encode(PostOrderResponse{Result: &posted}))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	order, err := client.CreateSellOrder(testOrderParams())
	require.NoError(t, err)

	result, err := client.PostOrder(order)
	require.NoError(t, err)
	assert.Equal(t, order.Hash.Hex(), result.Hash)
	require.NotNil(t, posted.V)
}

func TestClientPostOrderRejectsUnsigned(t *testing.T) {
	client := newTestClient(t, "")

	order, err := client.CreateSellOrder(testOrderParams())
	require.NoError(t, err)
	order.V, order.R, order.S = 0, common.Hash{}, common.Hash{}

	_, err = client.PostOrder(order)
	require.ErrorIs(t, err, ErrMissingSignature)
}

func TestClientGetOrders(t *testing.T) {
	client := newTestClient(t, "")

	// A signed order served back by the orderbook parses and verifies.
	order, err := client.CreateSellOrder(testOrderParams())
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := GetOrdersResponse{}
		resp.Result.Count = 1
		resp.Result.Orders = []*OrderJSON{OrderToJSON(order)}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client = newTestClient(t, server.URL)

	orders, count, err := client.GetOrders(&OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, orders, 1)
	assert.Equal(t, order.Hash, orders[0].Hash)
	require.NoError(t, chain.VerifyOrder(orders[0]))
}

func TestClientCurrentPrice(t *testing.T) {
	client := newTestClient(t, "")

	order, err := client.CreateSellOrder(testOrderParams())
	require.NoError(t, err)

	price, err := client.CurrentPrice(order)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", price.String())
}
