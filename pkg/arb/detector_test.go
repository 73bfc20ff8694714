package arb

import (
	"math"
	"testing"
)

func TestDetectorEvaluate(t *testing.T) {
	detector := NewDetector(0.005, 100)

	tests := []struct {
		name      string
		symbol    string
		spot      float64
		perp      float64
		wantHit   bool
		wantSpread float64
	}{
		{"Perp rich above threshold", "SOL/USDT", 100, 101, true, 0.01},
		{"Spot rich above threshold", "SOL/USDT", 101, 100, true, 0.01},
		{"Below threshold", "SOL/USDT", 100, 100.1, false, 0},
		{"Equal prices", "SOL/USDT", 100, 100, false, 0},
		{"Empty symbol", "", 100, 101, false, 0},
		{"Zero spot", "SOL/USDT", 0, 101, false, 0},
		{"Negative perp", "SOL/USDT", 100, -1, false, 0},
		{"NaN spot", "SOL/USDT", math.NaN(), 101, false, 0},
		{"Infinite perp", "SOL/USDT", 100, math.Inf(1), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp := detector.Evaluate(tt.symbol, tt.spot, tt.perp)
			if (opp != nil) != tt.wantHit {
				t.Fatalf("Evaluate(%q, %v, %v) hit = %v, want %v", tt.symbol, tt.spot, tt.perp, opp != nil, tt.wantHit)
			}
			if opp == nil {
				return
			}
			if math.Abs(opp.SpreadFraction-tt.wantSpread) > 1e-12 {
				t.Errorf("SpreadFraction = %v, want %v", opp.SpreadFraction, tt.wantSpread)
			}
		})
	}
}

func TestDetectorSpreadFormula(t *testing.T) {
	detector := NewDetector(0.0001, 100)

	// spread must be |perp-spot| / min(spot, perp)
	opp := detector.Evaluate("SOL/USDT", 50, 52)
	if opp == nil {
		t.Fatal("Expected opportunity")
	}
	want := 2.0 / 50.0
	if math.Abs(opp.SpreadFraction-want) > 1e-12 {
		t.Errorf("SpreadFraction = %v, want %v", opp.SpreadFraction, want)
	}

	// With spot rich, the divisor is the perp price.
	opp = detector.Evaluate("SOL/USDT", 52, 50)
	if opp == nil {
		t.Fatal("Expected opportunity")
	}
	if math.Abs(opp.SpreadFraction-want) > 1e-12 {
		t.Errorf("SpreadFraction = %v, want %v", opp.SpreadFraction, want)
	}
}

func TestDetectorPotentialProfit(t *testing.T) {
	detector := NewDetector(0.005, 100)

	opp := detector.Evaluate("SOL/USDT", 100, 101)
	if opp == nil {
		t.Fatal("Expected opportunity")
	}
	if math.Abs(opp.PotentialProfitUSD-1.0) > 1e-12 {
		t.Errorf("PotentialProfitUSD = %v, want 1.0", opp.PotentialProfitUSD)
	}
}

func TestDetectorIdempotent(t *testing.T) {
	detector := NewDetector(0.005, 100)

	first := detector.Evaluate("SOL/USDT", 100, 101)
	second := detector.Evaluate("SOL/USDT", 100, 101)

	if first == nil || second == nil {
		t.Fatal("Expected opportunities on both calls")
	}
	if *first != *second {
		t.Errorf("Evaluate not idempotent: %+v vs %+v", first, second)
	}
}
