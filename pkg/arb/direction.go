package arb

import (
	"fmt"

	"github.com/mwatts/driftarb/pkg/models"
)

// ResolveDirection picks which venue buys and which sells for a detected
// opportunity. When the perpetual trades rich, buy the spot leg and short
// the perp; otherwise sell spot and go long the perp. Equal prices resolve
// to the sell-spot branch, though the detector never emits a zero spread.
func ResolveDirection(opp *models.Opportunity) models.TradeDirection {
	if opp.PerpPrice > opp.SpotPrice {
		return models.TradeDirection{
			Action:   models.BuySpotSellPerp,
			SpotSide: models.OrderSideBuy,
			PerpSide: models.PerpSideShort,
			Reasoning: fmt.Sprintf("perp ($%.4f) > spot ($%.4f): buy spot, short perp",
				opp.PerpPrice, opp.SpotPrice),
		}
	}

	return models.TradeDirection{
		Action:   models.SellSpotBuyPerp,
		SpotSide: models.OrderSideSell,
		PerpSide: models.PerpSideLong,
		Reasoning: fmt.Sprintf("spot ($%.4f) >= perp ($%.4f): sell spot, long perp",
			opp.SpotPrice, opp.PerpPrice),
	}
}
