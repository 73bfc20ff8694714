package binance

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mwatts/driftarb/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSign(t *testing.T) {
	c := NewClient("key", "testsecret", false, testLogger())

	// Deterministic for identical input.
	query := "symbol=SOLUSDT&timestamp=1700000000000"
	if c.sign(query) != c.sign(query) {
		t.Error("Signature must be deterministic")
	}

	// 32-byte HMAC-SHA256 hex encodes to 64 characters.
	if got := len(c.sign(query)); got != 64 {
		t.Errorf("Signature length = %d, want 64", got)
	}

	if c.sign(query) == c.sign(query+"&recvWindow=5000") {
		t.Error("Different queries must produce different signatures")
	}
}

func TestGetBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/account" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-MBX-APIKEY") != "key" {
			t.Error("Missing API key header")
		}
		if r.URL.Query().Get("signature") == "" {
			t.Error("Missing signature parameter")
		}
		w.Write([]byte(`{"balances":[{"asset":"USDT","free":"512.50"},{"asset":"SOL","free":"3.2"},{"asset":"BTC","free":"0.0"}]}`))
	}))
	defer srv.Close()

	c := NewClient("key", "secret", false, testLogger())
	c.baseURL = srv.URL

	balances, err := c.GetBalances(context.Background())
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}

	if balances["USDT"] != 512.50 {
		t.Errorf("USDT = %v, want 512.50", balances["USDT"])
	}
	if balances["SOL"] != 3.2 {
		t.Errorf("SOL = %v, want 3.2", balances["SOL"])
	}
}

func TestPlaceOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/order" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("type") != "MARKET" {
			t.Errorf("type = %s, want MARKET", q.Get("type"))
		}
		if q.Get("newClientOrderId") == "" {
			t.Error("Missing client order id")
		}
		w.Write([]byte(`{"orderId":42,"symbol":"SOLUSDT","status":"FILLED","executedQty":"0.5000"}`))
	}))
	defer srv.Close()

	c := NewClient("key", "secret", false, testLogger())
	c.baseURL = srv.URL

	order, err := c.PlaceOrder(context.Background(), "SOLUSDT", models.OrderSideBuy, 0.5)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if order.OrderID != "42" || order.Status != "FILLED" {
		t.Errorf("Order = %+v, want id 42 status FILLED", order)
	}
	if order.Quantity != 0.5 {
		t.Errorf("Quantity = %v, want 0.5", order.Quantity)
	}
}

func TestPlaceOrderVenueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance"}`))
	}))
	defer srv.Close()

	c := NewClient("key", "secret", false, testLogger())
	c.baseURL = srv.URL

	if _, err := c.PlaceOrder(context.Background(), "SOLUSDT", models.OrderSideBuy, 0.5); err == nil {
		t.Fatal("Expected error on venue rejection")
	}
}
