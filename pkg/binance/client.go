// Package binance implements the spot venue client: signed REST calls for
// balances and order placement, plus a websocket price stream.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/mwatts/driftarb/pkg/models"
)

const (
	mainnetBaseURL = "https://api.binance.com"
	testnetBaseURL = "https://testnet.binance.vision"

	recvWindowMillis = 5000
)

type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

func NewClient(apiKey, apiSecret string, testnet bool, logger *logrus.Logger) *Client {
	baseURL := mainnetBaseURL
	if testnet {
		baseURL = testnetBaseURL
	}

	return &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Signed endpoints share a weight budget; 10 req/s is well inside it.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		logger:  logger,
	}
}

// sign computes the hex-encoded HMAC-SHA256 of the query string.
func (c *Client) sign(query string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Client) doSigned(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", strconv.Itoa(recvWindowMillis))
	query := params.Encode()
	query += "&signature=" + c.sign(query)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance %s %s: status %d: %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

type accountResponse struct {
	Balances []struct {
		Asset string `json:"asset"`
		Free  string `json:"free"`
	} `json:"balances"`
}

// GetBalances returns the free balance of every asset on the account.
func (c *Client) GetBalances(ctx context.Context) (map[string]float64, error) {
	body, err := c.doSigned(ctx, http.MethodGet, "/api/v3/account", url.Values{})
	if err != nil {
		return nil, err
	}

	var account accountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("decode account response: %w", err)
	}

	balances := make(map[string]float64, len(account.Balances))
	for _, b := range account.Balances {
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			continue
		}
		balances[b.Asset] = free
	}
	return balances, nil
}

type orderResponse struct {
	OrderID     int64  `json:"orderId"`
	Symbol      string `json:"symbol"`
	Status      string `json:"status"`
	ExecutedQty string `json:"executedQty"`
}

// PlaceOrder submits a market order. The client order id is a fresh UUID
// so retried submissions are distinguishable on the venue side.
func (c *Client) PlaceOrder(ctx context.Context, symbol string, side models.OrderSide, quantity float64) (*models.VenueOrder, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(quantity, 'f', 4, 64))
	params.Set("newClientOrderId", uuid.NewString())

	c.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"side":     side,
		"quantity": quantity,
	}).Info("Placing spot order")

	body, err := c.doSigned(ctx, http.MethodPost, "/api/v3/order", params)
	if err != nil {
		return nil, err
	}

	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	filled, _ := strconv.ParseFloat(order.ExecutedQty, 64)
	return &models.VenueOrder{
		OrderID:   strconv.FormatInt(order.OrderID, 10),
		Symbol:    order.Symbol,
		Side:      string(side),
		Quantity:  filled,
		Status:    order.Status,
		CreatedAt: time.Now(),
	}, nil
}
