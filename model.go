package meridian

// OrderJSON is the wire representation of an order. Numeric fields travel as
// decimal strings to preserve arbitrary precision, addresses as lowercase hex,
// byte buffers as 0x-prefixed hex, enums as their small integers. Hash and
// signature fields are present only once the order reaches that lifecycle
// stage.
type OrderJSON struct {
	Exchange string `json:"exchange"`
	Maker    string `json:"maker"`
	Taker    string `json:"taker"`

	MakerRelayerFee  string `json:"makerRelayerFee"`
	TakerRelayerFee  string `json:"takerRelayerFee"`
	MakerProtocolFee string `json:"makerProtocolFee"`
	TakerProtocolFee string `json:"takerProtocolFee"`
	FeeRecipient     string `json:"feeRecipient"`
	FeeMethod        int    `json:"feeMethod"`

	Side      int    `json:"side"`
	SaleKind  int    `json:"saleKind"`
	Target    string `json:"target"`
	HowToCall int    `json:"howToCall"`

	Calldata           string `json:"calldata"`
	ReplacementPattern string `json:"replacementPattern"`
	StaticTarget       string `json:"staticTarget"`
	StaticExtradata    string `json:"staticExtradata"`

	PaymentToken string `json:"paymentToken"`
	BasePrice    string `json:"basePrice"`
	Extra        string `json:"extra"`

	ListingTime    string `json:"listingTime"`
	ExpirationTime string `json:"expirationTime"`
	Salt           string `json:"salt"`

	Metadata *OrderMetadataJSON `json:"metadata,omitempty"`

	Hash string `json:"hash,omitempty"`

	V *int   `json:"v,omitempty"`
	R string `json:"r,omitempty"`
	S string `json:"s,omitempty"`
}

// OrderMetadataJSON is the wire representation of order metadata
type OrderMetadataJSON struct {
	Asset  AssetJSON `json:"asset"`
	Schema string    `json:"schema"`
}

// AssetJSON is the wire representation of the asset an order trades
type AssetJSON struct {
	ID       string `json:"id"`
	Address  string `json:"address"`
	Quantity string `json:"quantity,omitempty"`
}

// OrderQuery holds filters for orderbook queries. Zero values are omitted
// from the request.
type OrderQuery struct {
	Hash         string
	Maker        string
	Taker        string
	PaymentToken string
	Side         *int
	SaleKind     *int
	Limit        int
	Offset       int
}

// GetOrdersResponse is the orderbook envelope for order list queries
type GetOrdersResponse struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Result struct {
		Count  int          `json:"count"`
		Orders []*OrderJSON `json:"orders"`
	} `json:"result"`
}

// PostOrderResponse is the orderbook envelope for order submission
type PostOrderResponse struct {
	Code   int        `json:"code"`
	Msg    string     `json:"msg"`
	Result *OrderJSON `json:"result"`
}
