package arb

import (
	"context"
	"fmt"

	"github.com/mwatts/driftarb/pkg/models"
	"github.com/sirupsen/logrus"
)

// SpotClient is the spot venue surface the decision core depends on.
type SpotClient interface {
	GetBalances(ctx context.Context) (map[string]float64, error)
	PlaceOrder(ctx context.Context, symbol string, side models.OrderSide, quantity float64) (*models.VenueOrder, error)
}

// PerpClient is the perpetual venue surface the decision core depends on.
type PerpClient interface {
	GetAccountInfo(ctx context.Context) (*models.AccountInfo, error)
	PlacePerpOrder(ctx context.Context, market string, quantity, price float64, side models.PerpSide) (*models.VenueOrder, error)
}

// BalanceGate decides whether the spot venue holds enough of the asset a
// proposed trade consumes. A failed balance query is a soft rejection for
// the current cycle, never an escalated error.
type BalanceGate struct {
	spot      SpotClient
	feeBuffer float64
	logger    *logrus.Logger
}

func NewBalanceGate(spot SpotClient, feeBuffer float64, logger *logrus.Logger) *BalanceGate {
	return &BalanceGate{
		spot:      spot,
		feeBuffer: feeBuffer,
		logger:    logger,
	}
}

// Check verifies sufficiency for one trade. Buying the base asset consumes
// quote currency; selling consumes the base. Both sides carry a small fee
// buffer on the required amount.
func (g *BalanceGate) Check(ctx context.Context, direction models.TradeDirection, pair string, tradeSizeUSD, spotPrice float64) models.BalanceCheckResult {
	base, quote := models.SplitPair(pair)

	balances, err := g.spot.GetBalances(ctx)
	if err != nil {
		g.logger.WithError(err).Warn("Balance query failed, skipping cycle")
		return models.BalanceCheckResult{
			Sufficient:      false,
			RejectionReason: fmt.Sprintf("balance query failed: %v", err),
		}
	}

	if direction.SpotSide == models.OrderSideBuy {
		required := tradeSizeUSD * (1 + g.feeBuffer)
		available := balances[quote]
		return checkResult(quote, required, available)
	}

	required := (tradeSizeUSD / spotPrice) * (1 + g.feeBuffer)
	available := balances[base]
	return checkResult(base, required, available)
}

func checkResult(asset string, required, available float64) models.BalanceCheckResult {
	res := models.BalanceCheckResult{
		Sufficient:      available >= required,
		Asset:           asset,
		RequiredAmount:  required,
		AvailableAmount: available,
	}
	if !res.Sufficient {
		res.RejectionReason = fmt.Sprintf("insufficient %s: required %.4f, available %.4f",
			asset, required, available)
	}
	return res
}
