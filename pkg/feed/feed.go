// Package feed merges the spot websocket stream and perpetual mark-price
// polling into a single stream of paired price ticks.
package feed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mwatts/driftarb/pkg/models"
)

// TickFunc receives one simultaneous spot/perp price sample for a pair.
type TickFunc func(ctx context.Context, quote models.PriceQuote)

// SpotStream delivers best bid/ask updates for spot symbols.
type SpotStream interface {
	Connect(ctx context.Context, symbols []string, handler func(symbol string, bid, ask float64)) error
	Close()
}

// PerpPricer supplies the perpetual mark price on demand.
type PerpPricer interface {
	GetMarkPrice(ctx context.Context, market string) (float64, error)
}

// spotQuote is the last mid observed for one spot symbol.
type spotQuote struct {
	mid float64
	at  time.Time
}

// Feed pairs the freshest spot mid price with a freshly polled perp mark
// price on every poll interval. Ticks are delivered sequentially on the
// feed goroutine, giving the decision core its single logical stream.
//
// A spot mid is only valid for a few poll intervals. If the websocket
// goes quiet (disconnect, exhausted reconnects) the stored quote goes
// stale and the pair stops ticking, rather than pairing a frozen spot
// price with live perp prices.
type Feed struct {
	stream       SpotStream
	perp         PerpPricer
	pairs        []string
	pollInterval time.Duration
	maxQuoteAge  time.Duration
	now          func() time.Time
	logger       *logrus.Logger

	mu         sync.RWMutex
	spotQuotes map[string]spotQuote // keyed by spot symbol, e.g. SOLUSDT
}

func New(stream SpotStream, perp PerpPricer, pairs []string, pollInterval time.Duration, logger *logrus.Logger) *Feed {
	return &Feed{
		stream:       stream,
		perp:         perp,
		pairs:        pairs,
		pollInterval: pollInterval,
		maxQuoteAge:  3 * pollInterval,
		now:          time.Now,
		logger:       logger,
		spotQuotes:   make(map[string]spotQuote),
	}
}

// Start connects the spot stream and blocks polling perp prices until the
// context is cancelled. Each poll invokes onTick once per pair that has a
// fresh spot quote; pairs without one, or with only a stale one, are
// skipped.
func (f *Feed) Start(ctx context.Context, onTick TickFunc) error {
	symbols := make([]string, len(f.pairs))
	for i, pair := range f.pairs {
		symbols[i] = models.SpotSymbol(pair)
	}

	if err := f.stream.Connect(ctx, symbols, f.onSpotUpdate); err != nil {
		return err
	}
	defer f.stream.Close()

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.poll(ctx, onTick)
		}
	}
}

func (f *Feed) onSpotUpdate(symbol string, bid, ask float64) {
	if bid <= 0 || ask <= 0 {
		return
	}
	f.mu.Lock()
	f.spotQuotes[strings.ToUpper(symbol)] = spotQuote{mid: (bid + ask) / 2, at: f.now()}
	f.mu.Unlock()
}

func (f *Feed) poll(ctx context.Context, onTick TickFunc) {
	for _, pair := range f.pairs {
		f.mu.RLock()
		q, ok := f.spotQuotes[models.SpotSymbol(pair)]
		f.mu.RUnlock()
		if !ok {
			continue
		}
		if age := f.now().Sub(q.at); age > f.maxQuoteAge {
			f.logger.WithFields(logrus.Fields{
				"pair": pair,
				"age":  age,
			}).Warn("Spot quote stale, skipping tick")
			continue
		}

		reqCtx, cancel := context.WithTimeout(ctx, f.pollInterval)
		perp, err := f.perp.GetMarkPrice(reqCtx, models.PerpMarket(pair))
		cancel()
		if err != nil {
			f.logger.WithError(err).WithField("pair", pair).Warn("Failed to fetch mark price")
			continue
		}

		onTick(ctx, models.PriceQuote{
			Symbol:     pair,
			SpotPrice:  q.mid,
			PerpPrice:  perp,
			ObservedAt: q.at,
		})
	}
}
