package models

import "testing"

func TestPairHelpers(t *testing.T) {
	tests := []struct {
		pair     string
		wantBase string
		wantQuote string
		wantSpot string
		wantPerp string
	}{
		{"SOL/USDT", "SOL", "USDT", "SOLUSDT", "SOL-PERP"},
		{"BTC/USDT", "BTC", "USDT", "BTCUSDT", "BTC-PERP"},
		{"SOL", "SOL", "", "SOL", "SOL-PERP"},
	}

	for _, tt := range tests {
		t.Run(tt.pair, func(t *testing.T) {
			base, quote := SplitPair(tt.pair)
			if base != tt.wantBase || quote != tt.wantQuote {
				t.Errorf("SplitPair = %s/%s, want %s/%s", base, quote, tt.wantBase, tt.wantQuote)
			}
			if got := SpotSymbol(tt.pair); got != tt.wantSpot {
				t.Errorf("SpotSymbol = %s, want %s", got, tt.wantSpot)
			}
			if got := PerpMarket(tt.pair); got != tt.wantPerp {
				t.Errorf("PerpMarket = %s, want %s", got, tt.wantPerp)
			}
		})
	}
}
