package models

import (
	"strings"
	"time"
)

// PriceQuote is a single simultaneous sample of the spot and perpetual
// prices for one pair. Quotes are not retained after evaluation.
type PriceQuote struct {
	Symbol     string
	SpotPrice  float64
	PerpPrice  float64
	ObservedAt time.Time
}

// Opportunity is a tradable spread detected between the two venues.
// SpreadFraction is |perp-spot| / min(spot, perp). PotentialProfitUSD is a
// coarse pre-trade estimate based on a configured reference notional; the
// authoritative profit is computed after execution.
type Opportunity struct {
	Symbol             string
	SpotPrice          float64
	PerpPrice          float64
	SpreadFraction     float64
	PotentialProfitUSD float64
}

// SplitPair splits a "BASE/QUOTE" pair into its assets. A pair without a
// separator is returned as base with an empty quote.
func SplitPair(pair string) (base, quote string) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// SpotSymbol returns the spot exchange symbol for a pair, e.g. "SOL/USDT"
// becomes "SOLUSDT".
func SpotSymbol(pair string) string {
	base, quote := SplitPair(pair)
	return base + quote
}

// PerpMarket returns the perpetual market name for a pair, e.g. "SOL/USDT"
// becomes "SOL-PERP".
func PerpMarket(pair string) string {
	base, _ := SplitPair(pair)
	return base + "-PERP"
}
