package meridian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// WebSocket endpoint
	DefaultWSEndpoint = "wss://stream.meridian.exchange"

	// Heartbeat interval
	HeartbeatInterval = 30 * time.Second

	// Reconnect settings
	DefaultReconnectInterval    = 5 * time.Second
	DefaultMaxReconnectAttempts = 10
)

// WebSocket action types
const (
	ActionHeartbeat   = "HEARTBEAT"
	ActionSubscribe   = "SUBSCRIBE"
	ActionUnsubscribe = "UNSUBSCRIBE"
)

// WebSocket channel types
const (
	ChannelOrderNew       = "order.new"
	ChannelOrderFulfilled = "order.fulfilled"
	ChannelOrderCancelled = "order.cancelled"
)

// SubscribeMessage represents a subscription message
type SubscribeMessage struct {
	Action         string `json:"action"`
	Channel        string `json:"channel"`
	SubscriptionID string `json:"subscriptionId"`
	Maker          string `json:"maker,omitempty"`
	PaymentToken   string `json:"paymentToken,omitempty"`
}

// HeartbeatMessage represents a heartbeat message
type HeartbeatMessage struct {
	Action string `json:"action"`
}

// OrderEvent represents an order lifecycle message from the stream
type OrderEvent struct {
	Channel   string     `json:"channel"`
	OrderHash string     `json:"orderHash"`
	Order     *OrderJSON `json:"order,omitempty"`
	TxHash    string     `json:"txHash,omitempty"`
	Timestamp int64      `json:"timestamp"`
	MsgType   string     `json:"msgType"`
}

// WSEventHandler is a callback function for handling WebSocket events
type WSEventHandler func(messageType int, data []byte)

// WSErrorHandler is a callback function for handling WebSocket errors
type WSErrorHandler func(err error)

// WSConfig holds configuration for the WebSocket client
type WSConfig struct {
	Endpoint             string
	APIKey               string
	ReconnectInterval    time.Duration
	MaxReconnectAttempts int
	OnMessage            WSEventHandler
	OnError              WSErrorHandler
	OnConnect            func()
	OnDisconnect         func()
}

// WSClient streams order lifecycle events from the orderbook service
type WSClient struct {
	config           WSConfig
	conn             *websocket.Conn
	mu               sync.RWMutex
	isConnected      bool
	subscriptions    map[string]SubscribeMessage // Track active subscriptions for reconnection
	subMu            sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	heartbeatTicker  *time.Ticker
	reconnectAttempt int
}

// NewWSClient creates a new WebSocket client
func NewWSClient(config WSConfig) *WSClient {
	if config.Endpoint == "" {
		config.Endpoint = DefaultWSEndpoint
	}
	if config.ReconnectInterval == 0 {
		config.ReconnectInterval = DefaultReconnectInterval
	}
	if config.MaxReconnectAttempts == 0 {
		config.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}

	return &WSClient{
		config:        config,
		subscriptions: make(map[string]SubscribeMessage),
	}
}

// Connect establishes a WebSocket connection
func (ws *WSClient) Connect(ctx context.Context) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.isConnected {
		return nil
	}

	ws.ctx, ws.cancel = context.WithCancel(ctx)

	u, err := url.Parse(ws.config.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse WebSocket endpoint: %w", err)
	}
	if ws.config.APIKey != "" {
		q := u.Query()
		q.Set("apikey", ws.config.APIKey)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ws.ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to WebSocket: %w", err)
	}

	ws.conn = conn
	ws.isConnected = true
	ws.reconnectAttempt = 0

	ws.startHeartbeat()

	go ws.readLoop()

	if ws.config.OnConnect != nil {
		go ws.config.OnConnect()
	}

	return nil
}

// Disconnect closes the WebSocket connection
func (ws *WSClient) Disconnect() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.isConnected {
		return nil
	}

	ws.isConnected = false

	if ws.cancel != nil {
		ws.cancel()
	}
	if ws.heartbeatTicker != nil {
		ws.heartbeatTicker.Stop()
	}

	var err error
	if ws.conn != nil {
		err = ws.conn.Close()
		ws.conn = nil
	}

	if ws.config.OnDisconnect != nil {
		go ws.config.OnDisconnect()
	}

	return err
}

// IsConnected returns the current connection status
func (ws *WSClient) IsConnected() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.isConnected
}

// Subscribe subscribes to a channel with optional maker and payment-token
// filters. It returns the subscription ID used for Unsubscribe.
func (ws *WSClient) Subscribe(channel, maker, paymentToken string) (string, error) {
	msg := SubscribeMessage{
		Action:         ActionSubscribe,
		Channel:        channel,
		SubscriptionID: uuid.NewString(),
		Maker:          maker,
		PaymentToken:   paymentToken,
	}

	if err := ws.sendMessage(msg); err != nil {
		return "", err
	}

	ws.subMu.Lock()
	ws.subscriptions[msg.SubscriptionID] = msg
	ws.subMu.Unlock()

	return msg.SubscriptionID, nil
}

// Unsubscribe cancels a subscription by ID.
func (ws *WSClient) Unsubscribe(subscriptionID string) error {
	ws.subMu.Lock()
	msg, ok := ws.subscriptions[subscriptionID]
	delete(ws.subscriptions, subscriptionID)
	ws.subMu.Unlock()

	if !ok {
		return fmt.Errorf("unknown subscription %s", subscriptionID)
	}

	msg.Action = ActionUnsubscribe
	return ws.sendMessage(msg)
}

// SubscribeNewOrders subscribes to newly posted orders.
func (ws *WSClient) SubscribeNewOrders(maker, paymentToken string) (string, error) {
	return ws.Subscribe(ChannelOrderNew, maker, paymentToken)
}

// SubscribeFulfilledOrders subscribes to order settlements.
func (ws *WSClient) SubscribeFulfilledOrders(maker, paymentToken string) (string, error) {
	return ws.Subscribe(ChannelOrderFulfilled, maker, paymentToken)
}

// SubscribeCancelledOrders subscribes to order cancellations.
func (ws *WSClient) SubscribeCancelledOrders(maker, paymentToken string) (string, error) {
	return ws.Subscribe(ChannelOrderCancelled, maker, paymentToken)
}

// Subscriptions returns the IDs of the active subscriptions.
func (ws *WSClient) Subscriptions() []string {
	ws.subMu.RLock()
	defer ws.subMu.RUnlock()

	ids := make([]string, 0, len(ws.subscriptions))
	for id := range ws.subscriptions {
		ids = append(ids, id)
	}
	return ids
}

// sendMessage sends a message over the WebSocket connection
func (ws *WSClient) sendMessage(msg interface{}) error {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	if !ws.isConnected || ws.conn == nil {
		return fmt.Errorf("WebSocket not connected")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := ws.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// startHeartbeat starts the heartbeat ticker
func (ws *WSClient) startHeartbeat() {
	ws.heartbeatTicker = time.NewTicker(HeartbeatInterval)

	go func() {
		for {
			select {
			case <-ws.heartbeatTicker.C:
				if err := ws.sendMessage(HeartbeatMessage{Action: ActionHeartbeat}); err != nil {
					if ws.config.OnError != nil {
						ws.config.OnError(fmt.Errorf("heartbeat failed: %w", err))
					}
				}
			case <-ws.ctx.Done():
				return
			}
		}
	}()
}

// readLoop continuously reads messages from the WebSocket
func (ws *WSClient) readLoop() {
	for {
		select {
		case <-ws.ctx.Done():
			return
		default:
			ws.mu.RLock()
			conn := ws.conn
			ws.mu.RUnlock()

			if conn == nil {
				return
			}

			messageType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					ws.handleDisconnect()
					return
				}
				if ws.config.OnError != nil {
					ws.config.OnError(fmt.Errorf("read error: %w", err))
				}
				ws.handleDisconnect()
				return
			}

			if ws.config.OnMessage != nil {
				ws.config.OnMessage(messageType, data)
			}
		}
	}
}

// handleDisconnect handles disconnection and attempts reconnection
func (ws *WSClient) handleDisconnect() {
	ws.mu.Lock()
	wasConnected := ws.isConnected
	ws.isConnected = false
	if ws.heartbeatTicker != nil {
		ws.heartbeatTicker.Stop()
	}
	ws.mu.Unlock()

	if wasConnected && ws.config.OnDisconnect != nil {
		ws.config.OnDisconnect()
	}

	go ws.attemptReconnect()
}

// attemptReconnect attempts to reconnect to the WebSocket
func (ws *WSClient) attemptReconnect() {
	for ws.reconnectAttempt < ws.config.MaxReconnectAttempts {
		ws.reconnectAttempt++

		select {
		case <-ws.ctx.Done():
			return
		case <-time.After(ws.config.ReconnectInterval):
		}

		if err := ws.Connect(context.Background()); err != nil {
			if ws.config.OnError != nil {
				ws.config.OnError(fmt.Errorf("reconnect attempt %d failed: %w", ws.reconnectAttempt, err))
			}
			continue
		}

		ws.resubscribe()
		return
	}

	if ws.config.OnError != nil {
		ws.config.OnError(fmt.Errorf("max reconnect attempts (%d) reached", ws.config.MaxReconnectAttempts))
	}
}

// resubscribe resubscribes to all tracked subscriptions
func (ws *WSClient) resubscribe() {
	ws.subMu.RLock()
	defer ws.subMu.RUnlock()

	for _, msg := range ws.subscriptions {
		if err := ws.sendMessage(msg); err != nil {
			if ws.config.OnError != nil {
				ws.config.OnError(fmt.Errorf("resubscribe failed: %w", err))
			}
		}
	}
}
