// Package drift implements the perpetual venue client against a
// self-hosted drift-gateway instance.
package drift

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/mwatts/driftarb/pkg/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *JWTAuthenticator
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewClient creates a gateway client. auth may be nil for gateways that
// run without an authenticating proxy.
func NewClient(baseURL string, auth *JWTAuthenticator, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		auth:       auth,
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
		logger:     logger,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth != nil {
		if err := c.auth.AddAuthHeaders(req, method, path); err != nil {
			return nil, fmt.Errorf("auth headers: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("drift %s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

type accountInfoResponse struct {
	TotalCollateral float64 `json:"total_collateral"`
	FreeCollateral  float64 `json:"free_collateral"`
}

// GetAccountInfo returns the account's collateral snapshot.
func (c *Client) GetAccountInfo(ctx context.Context) (*models.AccountInfo, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v2/user/collateral", nil)
	if err != nil {
		return nil, err
	}

	var info accountInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode collateral response: %w", err)
	}

	return &models.AccountInfo{
		TotalCollateral: info.TotalCollateral,
		FreeCollateral:  info.FreeCollateral,
	}, nil
}

type placeOrderRequest struct {
	Market    string  `json:"market"`
	Amount    float64 `json:"amount"`
	Price     float64 `json:"price"`
	Side      string  `json:"side"`
	OrderType string  `json:"orderType"`
}

type placeOrderResponse struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// PlacePerpOrder opens a perpetual position. LONG buys, SHORT sells.
func (c *Client) PlacePerpOrder(ctx context.Context, market string, quantity, price float64, side models.PerpSide) (*models.VenueOrder, error) {
	gatewaySide := "buy"
	if side == models.PerpSideShort {
		gatewaySide = "sell"
	}

	c.logger.WithFields(logrus.Fields{
		"market":   market,
		"side":     side,
		"quantity": quantity,
		"price":    price,
	}).Info("Placing perp order")

	body, err := c.doRequest(ctx, http.MethodPost, "/v2/orders", placeOrderRequest{
		Market:    market,
		Amount:    quantity,
		Price:     price,
		Side:      gatewaySide,
		OrderType: "limit",
	})
	if err != nil {
		return nil, err
	}

	var order placeOrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	status := order.Status
	if status == "" {
		status = "PLACED"
	}
	return &models.VenueOrder{
		OrderID:   strconv.FormatInt(order.OrderID, 10),
		Symbol:    market,
		Side:      string(side),
		Quantity:  quantity,
		Status:    status,
		CreatedAt: time.Now(),
	}, nil
}

type markPriceResponse struct {
	Price float64 `json:"price"`
}

// GetMarkPrice returns the current mark price for a perpetual market.
func (c *Client) GetMarkPrice(ctx context.Context, market string) (float64, error) {
	path := "/v2/markPrice?market=" + url.QueryEscape(market)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}

	var mark markPriceResponse
	if err := json.Unmarshal(body, &mark); err != nil {
		return 0, fmt.Errorf("decode mark price response: %w", err)
	}
	if mark.Price <= 0 {
		return 0, fmt.Errorf("gateway returned non-positive mark price %f for %s", mark.Price, market)
	}
	return mark.Price, nil
}
