package meridian

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/meridianxyz/exchange-sdk-go/chain"
)

// Client is the main SDK client
type Client struct {
	apiClient *APIClient
	signer    *chain.Signer
	exchange  *chain.Exchange
	caller    *chain.ContractCaller
	chainID   ChainID
	contracts ContractAddresses
}

// ClientConfig holds configuration for creating a Client
type ClientConfig struct {
	Host                   string
	APIKey                 string
	ChainID                ChainID
	RPCURL                 string
	PrivateKey             string
	ExchangeAddr           string
	TokenTransferProxyAddr string
}

// NewClient creates a new exchange SDK client. PrivateKey and RPCURL are
// optional: a client without a key can query and validate but not create or
// fulfill orders, and a client without an RPC connection cannot submit
// settlement transactions.
func NewClient(config ClientConfig) (*Client, error) {
	isSupported := false
	for _, supportedID := range SupportedChainIDs {
		if config.ChainID == supportedID {
			isSupported = true
			break
		}
	}
	if !isSupported {
		return nil, &InvalidParamError{
			Message: fmt.Sprintf("chain_id must be one of %v", SupportedChainIDs),
		}
	}

	contracts := DefaultContractAddresses[config.ChainID]
	if config.ExchangeAddr != "" {
		contracts.Exchange = config.ExchangeAddr
	}
	if config.TokenTransferProxyAddr != "" {
		contracts.TokenTransferProxy = config.TokenTransferProxyAddr
	}

	c := &Client{
		apiClient: NewAPIClient(config.Host, config.APIKey, config.ChainID),
		exchange:  chain.NewExchange(contracts.Exchange),
		chainID:   config.ChainID,
		contracts: contracts,
	}

	if config.PrivateKey != "" {
		signer, err := chain.NewSigner(config.PrivateKey)
		if err != nil {
			return nil, err
		}
		c.signer = signer
	}

	if config.RPCURL != "" && config.PrivateKey != "" {
		caller, err := chain.NewContractCaller(
			config.RPCURL,
			config.PrivateKey,
			contracts.Exchange,
			contracts.TokenTransferProxy,
			int64(config.ChainID),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create contract caller: %w", err)
		}
		c.caller = caller
	}

	return c, nil
}

// Close closes the client and cleans up resources
func (c *Client) Close() {
	if c.caller != nil {
		c.caller.Close()
	}
}

// Exchange returns the configured exchange.
func (c *Client) Exchange() *chain.Exchange {
	return c.exchange
}

// OrderParams holds the caller's intent for a new order. Nil fee fields and
// Extra default to zero; an empty Taker means the order is open to anyone;
// a zero ListingTime means now and a zero ExpirationTime means never.
type OrderParams struct {
	Metadata     chain.OrderMetadata
	PaymentToken string
	BasePrice    *big.Int
	Extra        *big.Int
	SaleKind     chain.SaleKind
	FeeMethod    chain.FeeMethod

	MakerRelayerFee  *big.Int
	TakerRelayerFee  *big.Int
	MakerProtocolFee *big.Int
	TakerProtocolFee *big.Int
	FeeRecipient     string

	Taker          string
	ListingTime    int64
	ExpirationTime int64
}

// CreateSellOrder builds, hashes and signs a sell order for the configured
// signing key.
func (c *Client) CreateSellOrder(params *OrderParams) (*chain.Order, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}

	maker := c.signer.Address()
	calldata, pattern, err := chain.EncodeSell(params.Metadata, maker)
	if err != nil {
		return nil, err
	}

	return c.buildAndSign(params, chain.SideSell, maker, calldata, pattern)
}

// CreateBuyOrder builds, hashes and signs a buy order for the configured
// signing key. Buy orders must pay in an ERC20 token: the exchange cannot
// escrow native currency for the maker side.
func (c *Client) CreateBuyOrder(params *OrderParams) (*chain.Order, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	if params.PaymentToken == "" || params.PaymentToken == ZeroAddress {
		return nil, &InvalidParamError{Message: "buy orders require an ERC20 payment token"}
	}

	maker := c.signer.Address()
	calldata, pattern, err := chain.EncodeBuy(params.Metadata, maker)
	if err != nil {
		return nil, err
	}

	return c.buildAndSign(params, chain.SideBuy, maker, calldata, pattern)
}

func (c *Client) buildAndSign(params *OrderParams, side chain.Side, maker common.Address, calldata, pattern []byte) (*chain.Order, error) {
	if params.BasePrice == nil || params.BasePrice.Sign() < 0 {
		return nil, &InvalidParamError{Message: "base price must be a non-negative integer"}
	}

	listingTime := params.ListingTime
	if listingTime == 0 {
		listingTime = time.Now().Unix()
	}

	order := chain.UnhashedOrder{
		Exchange: c.exchange.Address(),
		Maker:    maker,
		Taker:    common.HexToAddress(params.Taker),

		MakerRelayerFee:  orZero(params.MakerRelayerFee),
		TakerRelayerFee:  orZero(params.TakerRelayerFee),
		MakerProtocolFee: orZero(params.MakerProtocolFee),
		TakerProtocolFee: orZero(params.TakerProtocolFee),
		FeeRecipient:     common.HexToAddress(params.FeeRecipient),
		FeeMethod:        params.FeeMethod,

		Side:      side,
		SaleKind:  params.SaleKind,
		Target:    params.Metadata.Asset.Address,
		HowToCall: chain.HowToCallCall,

		Calldata:           calldata,
		ReplacementPattern: pattern,
		StaticExtradata:    []byte{},

		PaymentToken: common.HexToAddress(params.PaymentToken),
		BasePrice:    params.BasePrice,
		Extra:        orZero(params.Extra),

		ListingTime:    big.NewInt(listingTime),
		ExpirationTime: big.NewInt(params.ExpirationTime),
		Salt:           nil,

		Metadata: params.Metadata,
	}
	order.Salt = chain.GenerateSalt()

	unsigned, err := chain.NewUnsignedOrder(&order)
	if err != nil {
		return nil, err
	}

	return c.signer.SignOrder(unsigned)
}

// PostOrder submits a signed order to the orderbook service.
func (c *Client) PostOrder(o *chain.Order) (*OrderJSON, error) {
	if !o.Signed() {
		return nil, ErrMissingSignature
	}
	if err := chain.VerifyOrder(o); err != nil {
		return nil, err
	}
	return c.apiClient.PostOrder(OrderToJSON(o))
}

// GetOrder fetches and parses the single order matching the query.
func (c *Client) GetOrder(query *OrderQuery) (*chain.Order, error) {
	oj, err := c.apiClient.GetOrder(query)
	if err != nil {
		return nil, err
	}
	return OrderFromJSON(oj)
}

// GetOrders fetches and parses orders matching the query.
func (c *Client) GetOrders(query *OrderQuery) ([]*chain.Order, int, error) {
	ojs, count, err := c.apiClient.GetOrders(query)
	if err != nil {
		return nil, 0, err
	}

	orders := make([]*chain.Order, 0, len(ojs))
	for _, oj := range ojs {
		o, err := OrderFromJSON(oj)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, count, nil
}

// CurrentPrice returns an order's effective price right now.
func (c *Client) CurrentPrice(o *chain.Order) (*big.Int, error) {
	return chain.CurrentPrice(&o.UnhashedOrder, time.Now())
}

// FulfillOrder fetches the order with the given hash, synthesizes the
// matching side for the configured signing key, validates the pair and
// submits it for settlement.
func (c *Client) FulfillOrder(ctx context.Context, orderHash string) (*types.Transaction, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	if c.caller == nil {
		return nil, ErrNoRPC
	}

	order, err := c.GetOrder(&OrderQuery{Hash: orderHash})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	matching, err := c.exchange.MakeMatchingOrder(&order.UnsignedOrder, c.signer.Address(), now)
	if err != nil {
		return nil, err
	}

	// The synthesized side stays unsigned: the exchange authenticates the
	// filler as the transaction sender.
	counter := &chain.Order{UnsignedOrder: *matching}

	var buy, sell *chain.Order
	if order.Side == chain.SideSell {
		buy, sell = counter, order
	} else {
		buy, sell = order, counter
	}

	if err := c.exchange.ValidateMatch(buy, sell, now); err != nil {
		return nil, err
	}

	return c.caller.AtomicMatch(ctx, buy, sell)
}

// CancelOrder cancels a signed order on-chain.
func (c *Client) CancelOrder(ctx context.Context, o *chain.Order) (*types.Transaction, error) {
	if c.caller == nil {
		return nil, ErrNoRPC
	}
	return c.caller.CancelOrder(ctx, o)
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return big.NewInt(0)
	}
	return n
}
