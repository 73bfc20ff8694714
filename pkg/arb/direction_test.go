package arb

import (
	"strings"
	"testing"

	"github.com/mwatts/driftarb/pkg/models"
)

func TestResolveDirection(t *testing.T) {
	tests := []struct {
		name       string
		spot       float64
		perp       float64
		wantAction models.DirectionAction
		wantSpot   models.OrderSide
		wantPerp   models.PerpSide
	}{
		{"Perp rich", 100, 101, models.BuySpotSellPerp, models.OrderSideBuy, models.PerpSideShort},
		{"Spot rich", 101, 100, models.SellSpotBuyPerp, models.OrderSideSell, models.PerpSideLong},
		{"Tie resolves to sell spot", 100, 100, models.SellSpotBuyPerp, models.OrderSideSell, models.PerpSideLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := ResolveDirection(&models.Opportunity{
				Symbol:    "SOL/USDT",
				SpotPrice: tt.spot,
				PerpPrice: tt.perp,
			})

			if dir.Action != tt.wantAction {
				t.Errorf("Action = %v, want %v", dir.Action, tt.wantAction)
			}
			if dir.SpotSide != tt.wantSpot {
				t.Errorf("SpotSide = %v, want %v", dir.SpotSide, tt.wantSpot)
			}
			if dir.PerpSide != tt.wantPerp {
				t.Errorf("PerpSide = %v, want %v", dir.PerpSide, tt.wantPerp)
			}
			if dir.Reasoning == "" {
				t.Error("Expected non-empty reasoning")
			}
		})
	}
}

func TestResolveDirectionReasoningNamesPrices(t *testing.T) {
	dir := ResolveDirection(&models.Opportunity{
		Symbol:    "SOL/USDT",
		SpotPrice: 100.5,
		PerpPrice: 102.25,
	})

	for _, want := range []string{"102.2500", "100.5000"} {
		if !strings.Contains(dir.Reasoning, want) {
			t.Errorf("Reasoning %q missing price %s", dir.Reasoning, want)
		}
	}
}
