package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ERC20 ABI JSON for allowance and approve
const erc20ABIJSON = `[
	{
		"constant": true,
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	}
]`

// Exchange ABI JSON for settlement and cancellation
const exchangeABIJSON = `[
	{
		"constant": false,
		"inputs": [
			{"name": "addrs", "type": "address[14]"},
			{"name": "uints", "type": "uint256[18]"},
			{"name": "feeMethodsSidesKindsHowToCalls", "type": "uint8[8]"},
			{"name": "calldataBuy", "type": "bytes"},
			{"name": "calldataSell", "type": "bytes"},
			{"name": "replacementPatternBuy", "type": "bytes"},
			{"name": "replacementPatternSell", "type": "bytes"},
			{"name": "staticExtradataBuy", "type": "bytes"},
			{"name": "staticExtradataSell", "type": "bytes"},
			{"name": "vs", "type": "uint8[2]"},
			{"name": "rssMetadata", "type": "bytes32[5]"}
		],
		"name": "atomicMatch_",
		"outputs": [],
		"payable": true,
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "addrs", "type": "address[7]"},
			{"name": "uints", "type": "uint256[9]"},
			{"name": "feeMethod", "type": "uint8"},
			{"name": "side", "type": "uint8"},
			{"name": "saleKind", "type": "uint8"},
			{"name": "howToCall", "type": "uint8"},
			{"name": "calldata", "type": "bytes"},
			{"name": "replacementPattern", "type": "bytes"},
			{"name": "staticExtradata", "type": "bytes"},
			{"name": "v", "type": "uint8"},
			{"name": "r", "type": "bytes32"},
			{"name": "s", "type": "bytes32"}
		],
		"name": "cancelOrder_",
		"outputs": [],
		"type": "function"
	}
]`

// GetERC20ABI returns the parsed ERC20 ABI
func GetERC20ABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic("failed to parse ERC20 ABI: " + err.Error())
	}
	return parsed
}

// GetExchangeABI returns the parsed exchange ABI
func GetExchangeABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(exchangeABIJSON))
	if err != nil {
		panic("failed to parse exchange ABI: " + err.Error())
	}
	return parsed
}

// ContractCaller submits exchange transactions. The matching core hands it a
// validated (buy, sell) pair; everything from here on is I/O against the
// chain.
type ContractCaller struct {
	client         *ethclient.Client
	privateKey     *ecdsa.PrivateKey
	chainID        *big.Int
	exchangeAddr   common.Address
	tokenProxyAddr common.Address
}

// NewContractCaller dials the RPC endpoint and prepares a caller for the
// given exchange and token-transfer proxy contracts.
func NewContractCaller(rpcURL, privateKeyHex, exchangeAddr, tokenProxyAddr string, chainID int64) (*ContractCaller, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &ContractCaller{
		client:         client,
		privateKey:     privateKey,
		chainID:        big.NewInt(chainID),
		exchangeAddr:   common.HexToAddress(exchangeAddr),
		tokenProxyAddr: common.HexToAddress(tokenProxyAddr),
	}, nil
}

// Close releases the underlying RPC connection.
func (cc *ContractCaller) Close() {
	if cc.client != nil {
		cc.client.Close()
	}
}

// SignerAddress returns the address of the transaction signing key.
func (cc *ContractCaller) SignerAddress() common.Address {
	return crypto.PubkeyToAddress(cc.privateKey.PublicKey)
}

// CheckGasBalance checks that the signer can cover the estimated gas with a
// 20% margin.
func (cc *ContractCaller) CheckGasBalance(ctx context.Context, estimatedGas uint64) error {
	signerAddr := cc.SignerAddress()
	balance, err := cc.client.BalanceAt(ctx, signerAddr, nil)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	gasPrice, err := cc.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get gas price: %w", err)
	}

	estimatedGasWithMargin := new(big.Int).Mul(big.NewInt(int64(estimatedGas)), big.NewInt(120))
	estimatedGasWithMargin.Div(estimatedGasWithMargin, big.NewInt(100))

	required := new(big.Int).Mul(estimatedGasWithMargin, gasPrice)
	if balance.Cmp(required) < 0 {
		return fmt.Errorf("insufficient gas balance: signer %s has %s wei, needs approximately %s wei",
			signerAddr.Hex(), balance.String(), required.String())
	}

	return nil
}

// PaymentTokenAllowance returns how much of token the transfer proxy may
// spend on behalf of owner.
func (cc *ContractCaller) PaymentTokenAllowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	erc20 := GetERC20ABI()
	data, err := erc20.Pack("allowance", owner, cc.tokenProxyAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to pack allowance: %w", err)
	}

	result, err := cc.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("allowance call failed: %w", err)
	}

	values, err := erc20.Unpack("allowance", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack allowance: %w", err)
	}
	allowance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected allowance return type %T", values[0])
	}
	return allowance, nil
}

// ApprovePaymentToken approves the transfer proxy to spend amount of token.
func (cc *ContractCaller) ApprovePaymentToken(ctx context.Context, token common.Address, amount *big.Int) (*types.Transaction, error) {
	data, err := GetERC20ABI().Pack("approve", cc.tokenProxyAddr, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack approve: %w", err)
	}
	return cc.sendContractTransaction(ctx, token, big.NewInt(0), data)
}

// AtomicMatch submits a validated (buy, sell) pair for on-chain settlement.
// When the payment token is the zero address the buy price rides along as
// native value.
func (cc *ContractCaller) AtomicMatch(ctx context.Context, buy, sell *Order) (*types.Transaction, error) {
	if err := cc.CheckGasBalance(ctx, 500000); err != nil {
		return nil, err
	}

	addrs := [14]common.Address{
		buy.Exchange, buy.Maker, buy.Taker, buy.FeeRecipient, buy.Target, buy.StaticTarget, buy.PaymentToken,
		sell.Exchange, sell.Maker, sell.Taker, sell.FeeRecipient, sell.Target, sell.StaticTarget, sell.PaymentToken,
	}
	uints := [18]*big.Int{
		buy.MakerRelayerFee, buy.TakerRelayerFee, buy.MakerProtocolFee, buy.TakerProtocolFee,
		buy.BasePrice, buy.Extra, buy.ListingTime, buy.ExpirationTime, buy.Salt,
		sell.MakerRelayerFee, sell.TakerRelayerFee, sell.MakerProtocolFee, sell.TakerProtocolFee,
		sell.BasePrice, sell.Extra, sell.ListingTime, sell.ExpirationTime, sell.Salt,
	}
	methods := [8]uint8{
		uint8(buy.FeeMethod), uint8(buy.Side), uint8(buy.SaleKind), uint8(buy.HowToCall),
		uint8(sell.FeeMethod), uint8(sell.Side), uint8(sell.SaleKind), uint8(sell.HowToCall),
	}
	vs := [2]uint8{buy.V, sell.V}
	rss := [5][32]byte{buy.R, buy.S, sell.R, sell.S, {}}

	data, err := GetExchangeABI().Pack("atomicMatch_",
		addrs, uints, methods,
		buy.Calldata, sell.Calldata,
		buy.ReplacementPattern, sell.ReplacementPattern,
		buy.StaticExtradata, sell.StaticExtradata,
		vs, rss,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack atomicMatch_: %w", err)
	}

	value := big.NewInt(0)
	if buy.PaymentToken == (common.Address{}) {
		value = new(big.Int).Set(buy.BasePrice)
	}

	return cc.sendContractTransaction(ctx, cc.exchangeAddr, value, data)
}

// CancelOrder cancels a signed order on-chain. Only the maker's key can
// produce a transaction the contract will accept.
func (cc *ContractCaller) CancelOrder(ctx context.Context, o *Order) (*types.Transaction, error) {
	addrs := [7]common.Address{
		o.Exchange, o.Maker, o.Taker, o.FeeRecipient, o.Target, o.StaticTarget, o.PaymentToken,
	}
	uints := [9]*big.Int{
		o.MakerRelayerFee, o.TakerRelayerFee, o.MakerProtocolFee, o.TakerProtocolFee,
		o.BasePrice, o.Extra, o.ListingTime, o.ExpirationTime, o.Salt,
	}

	data, err := GetExchangeABI().Pack("cancelOrder_",
		addrs, uints,
		uint8(o.FeeMethod), uint8(o.Side), uint8(o.SaleKind), uint8(o.HowToCall),
		o.Calldata, o.ReplacementPattern, o.StaticExtradata,
		o.V, [32]byte(o.R), [32]byte(o.S),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack cancelOrder_: %w", err)
	}

	return cc.sendContractTransaction(ctx, cc.exchangeAddr, big.NewInt(0), data)
}

// WaitForReceipt polls for a transaction receipt until the context is done.
func (cc *ContractCaller) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	for {
		receipt, err := cc.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (cc *ContractCaller) sendContractTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	from := cc.SignerAddress()

	nonce, err := cc.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := cc.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit, err := cc.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(cc.chainID), cc.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := cc.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx, nil
}
