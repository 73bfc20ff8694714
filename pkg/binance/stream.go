package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	mainnetStreamURL = "wss://stream.binance.com:9443/stream"
	testnetStreamURL = "wss://stream.testnet.binance.vision/stream"
)

// TickerHandler receives the best bid/ask for one spot symbol.
type TickerHandler = func(symbol string, bid, ask float64)

// Stream maintains a combined bookTicker websocket subscription and feeds
// every update to a handler. It reconnects with a fixed delay up to a
// bounded number of attempts.
type Stream struct {
	url            string
	reconnectDelay time.Duration
	maxReconnects  int

	conn      *websocket.Conn
	mu        sync.Mutex
	connected bool
	stopPing  chan struct{}

	handler TickerHandler
	logger  *logrus.Logger
}

func NewStream(testnet bool, logger *logrus.Logger) *Stream {
	url := mainnetStreamURL
	if testnet {
		url = testnetStreamURL
	}
	return &Stream{
		url:            url,
		reconnectDelay: 5 * time.Second,
		maxReconnects:  10,
		logger:         logger,
	}
}

type streamMessage struct {
	Stream string `json:"stream"`
	Data   struct {
		Symbol string `json:"s"`
		Bid    string `json:"b"`
		Ask    string `json:"a"`
	} `json:"data"`
}

// Connect opens the combined stream for the given spot symbols and starts
// the read and keepalive loops. The handler is invoked on every update.
func (s *Stream) Connect(ctx context.Context, symbols []string, handler TickerHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}
	s.handler = handler

	streams := make([]string, len(symbols))
	for i, sym := range symbols {
		streams[i] = strings.ToLower(sym) + "@bookTicker"
	}
	url := s.url + "?streams=" + strings.Join(streams, "/")

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.connected = true

	// One keepalive per connection; stop the previous one so reconnects
	// don't accumulate pingers.
	if s.stopPing != nil {
		close(s.stopPing)
	}
	s.stopPing = make(chan struct{})

	go s.readLoop(ctx, symbols)
	go s.keepAlive(ctx, s.stopPing)

	return nil
}

func (s *Stream) readLoop(ctx context.Context, symbols []string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg streamMessage
			if err := s.conn.ReadJSON(&msg); err != nil {
				s.logger.WithError(err).Error("Failed to read stream message")
				s.handleDisconnect()
				s.reconnect(ctx, symbols)
				return
			}

			bid, err1 := strconv.ParseFloat(msg.Data.Bid, 64)
			ask, err2 := strconv.ParseFloat(msg.Data.Ask, 64)
			if err1 != nil || err2 != nil || msg.Data.Symbol == "" {
				continue
			}
			s.handler(msg.Data.Symbol, bid, ask)
		}
	}
}

func (s *Stream) keepAlive(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.connected {
				if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					s.logger.WithError(err).Error("Failed to send ping")
					s.mu.Unlock()
					s.handleDisconnect()
					return
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Stream) reconnect(ctx context.Context, symbols []string) {
	for attempt := 1; attempt <= s.maxReconnects; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}

		s.logger.WithField("attempt", attempt).Info("Reconnecting to stream")
		if err := s.Connect(ctx, symbols, s.handler); err != nil {
			s.logger.WithError(err).Error("Reconnect failed")
			continue
		}
		return
	}
	s.logger.Error("Giving up on stream reconnection")
}

func (s *Stream) handleDisconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
	if s.conn != nil {
		s.conn.Close()
	}
}

// Close tears the connection down.
func (s *Stream) Close() {
	s.handleDisconnect()
}
