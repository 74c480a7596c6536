// Example usage of the Meridian exchange SDK
package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	meridian "github.com/meridianxyz/exchange-sdk-go"
	"github.com/meridianxyz/exchange-sdk-go/chain"
)

func main() {
	// Secrets come from .env; see .env.example
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	config := meridian.ClientConfig{
		Host:       envOr("MERIDIAN_API_HOST", "https://api.meridian.exchange"),
		APIKey:     os.Getenv("MERIDIAN_API_KEY"),
		ChainID:    meridian.ChainIDSepolia,
		RPCURL:     os.Getenv("MERIDIAN_RPC_URL"),
		PrivateKey: os.Getenv("MERIDIAN_PRIVATE_KEY"),
	}

	client, err := meridian.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	// Example: list the latest open sell orders
	fmt.Println("Fetching sell orders...")
	sellSide := int(chain.SideSell)
	orders, count, err := client.GetOrders(&meridian.OrderQuery{Side: &sellSide, Limit: 10})
	if err != nil {
		log.Printf("Failed to get orders: %v", err)
	} else {
		fmt.Printf("Orderbook has %d sell orders; first page:\n", count)
		for _, o := range orders {
			price, err := client.CurrentPrice(o)
			if err != nil {
				log.Printf("Failed to price order %s: %v", o.Hash.Hex(), err)
				continue
			}
			fmt.Printf("  %s  price=%s wei\n", o.Hash.Hex(), price.String())
		}
	}

	// Example: list an asset as a one-week Dutch auction
	fmt.Println("\nCreating sell order...")
	sellOrder, err := client.CreateSellOrder(&meridian.OrderParams{
		Metadata: chain.OrderMetadata{
			Asset: chain.Asset{
				TokenID: big.NewInt(1337),
				Address: common.HexToAddress(envOr("MERIDIAN_ASSET_ADDRESS", "0x0000000000000000000000000000000000000000")),
			},
			Schema: chain.SchemaERC721,
		},
		SaleKind:       chain.SaleKindDutchAuction,
		BasePrice:      big.NewInt(2000000000000000000), // start at 2 tokens
		Extra:          big.NewInt(1000000000000000000), // decay to 1
		ExpirationTime: time.Now().Add(7 * 24 * time.Hour).Unix(),
	})
	if err != nil {
		log.Printf("Failed to create sell order: %v", err)
	} else {
		fmt.Printf("Sell order hashed as %s\n", sellOrder.Hash.Hex())

		if _, err := client.PostOrder(sellOrder); err != nil {
			log.Printf("Failed to post order: %v", err)
		}
	}

	// Example: fill an existing order by hash
	if orderHash := os.Getenv("MERIDIAN_FILL_ORDER_HASH"); orderHash != "" {
		fmt.Println("\nFulfilling order...")
		tx, err := client.FulfillOrder(ctx, orderHash)
		if err != nil {
			log.Printf("Failed to fulfill order: %v", err)
		} else {
			fmt.Printf("Settlement submitted: %s\n", tx.Hash().Hex())
		}
	}

	// Example: stream new orders
	fmt.Println("\nStreaming new orders for 30s...")
	ws := meridian.NewWSClient(meridian.WSConfig{
		APIKey: config.APIKey,
		OnMessage: func(_ int, data []byte) {
			fmt.Printf("event: %s\n", data)
		},
		OnError: func(err error) {
			log.Printf("stream error: %v", err)
		},
	})
	if err := ws.Connect(ctx); err != nil {
		log.Printf("Failed to connect stream: %v", err)
		return
	}
	defer ws.Disconnect()

	if _, err := ws.SubscribeNewOrders("", ""); err != nil {
		log.Printf("Failed to subscribe: %v", err)
		return
	}
	time.Sleep(30 * time.Second)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
