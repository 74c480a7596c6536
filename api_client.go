package meridian

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIClient handles HTTP requests to the orderbook service
type APIClient struct {
	host    string
	apiKey  string
	chainID ChainID
	client  *http.Client
}

// NewAPIClient creates a new orderbook API client
func NewAPIClient(host, apiKey string, chainID ChainID) *APIClient {
	return &APIClient{
		host:    host,
		apiKey:  apiKey,
		chainID: chainID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest performs an HTTP request
func (c *APIClient) doRequest(method, endpoint string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("%s%s", c.host, endpoint), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// decodeJSONResponse reads the response body, checks HTTP status, and decodes JSON
func (c *APIClient) decodeJSONResponse(resp *http.Response, result interface{}) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyStr := string(bodyBytes)
		if bodyStr == "" {
			bodyStr = resp.Status
		}
		return &OrderbookError{Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, bodyStr)}
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		bodyStr := string(bodyBytes)
		if len(bodyStr) > 200 {
			bodyStr = bodyStr[:200] + "..."
		}
		return fmt.Errorf("failed to decode JSON response: %w (body: %s)", err, bodyStr)
	}

	return nil
}

// GetOrders fetches orders matching the query. Returns the page of orders and
// the total count known to the orderbook.
func (c *APIClient) GetOrders(query *OrderQuery) ([]*OrderJSON, int, error) {
	endpoint := "/orders?" + c.encodeQuery(query)

	resp, err := c.doRequest("GET", endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result GetOrdersResponse
	if err := c.decodeJSONResponse(resp, &result); err != nil {
		return nil, 0, err
	}

	if result.Code != 0 {
		return nil, 0, &OrderbookError{Message: result.Msg}
	}

	return result.Result.Orders, result.Result.Count, nil
}

// GetOrder fetches the single order matching the query, or ErrOrderNotFound.
func (c *APIClient) GetOrder(query *OrderQuery) (*OrderJSON, error) {
	limited := *query
	limited.Limit = 1

	orders, _, err := c.GetOrders(&limited)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders[0], nil
}

// PostOrder submits a signed order to the orderbook.
func (c *APIClient) PostOrder(oj *OrderJSON) (*OrderJSON, error) {
	resp, err := c.doRequest("POST", "/orders", oj)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result PostOrderResponse
	if err := c.decodeJSONResponse(resp, &result); err != nil {
		return nil, err
	}

	if result.Code != 0 {
		return nil, &OrderbookError{Message: result.Msg}
	}

	return result.Result, nil
}

func (c *APIClient) encodeQuery(query *OrderQuery) string {
	values := url.Values{}
	values.Set("chain_id", strconv.Itoa(int(c.chainID)))

	if query.Hash != "" {
		values.Set("order_hash", query.Hash)
	}
	if query.Maker != "" {
		values.Set("maker", query.Maker)
	}
	if query.Taker != "" {
		values.Set("taker", query.Taker)
	}
	if query.PaymentToken != "" {
		values.Set("payment_token", query.PaymentToken)
	}
	if query.Side != nil {
		values.Set("side", strconv.Itoa(*query.Side))
	}
	if query.SaleKind != nil {
		values.Set("sale_kind", strconv.Itoa(*query.SaleKind))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}

	return values.Encode()
}
