package arb

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mwatts/driftarb/pkg/models"
)

// Executor drives one opportunity through the full decision chain:
// concurrency cap, allocation, direction, balance gate, then the two leg
// placements. Every rejection and venue failure becomes a structured
// result; nothing escapes as an error or panic, so a bad cycle can never
// abort the tick stream.
type Executor struct {
	spot    SpotClient
	perp    PerpClient
	planner *Planner
	gate    *BalanceGate
	tracker *Tracker
	feeRate float64
	logger  *logrus.Logger
}

func NewExecutor(spot SpotClient, perp PerpClient, planner *Planner, gate *BalanceGate, tracker *Tracker, feeRate float64, logger *logrus.Logger) *Executor {
	return &Executor{
		spot:    spot,
		perp:    perp,
		planner: planner,
		gate:    gate,
		tracker: tracker,
		feeRate: feeRate,
		logger:  logger,
	}
}

// Execute attempts one arbitrage for a detected opportunity.
func (e *Executor) Execute(ctx context.Context, opp *models.Opportunity) *models.ExecutionResult {
	if !e.tracker.CanAcceptNewOrder() {
		e.logger.Info("Maximum concurrent orders reached, skipping trade")
		return failure("maximum concurrent orders reached")
	}

	binanceAvail, driftAvail, err := e.fetchBalances(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("Balance snapshot failed, skipping cycle")
		return failure(fmt.Sprintf("balance query failed: %v", err))
	}

	decision := e.planner.Plan(e.tracker.ActiveOrders(), binanceAvail, driftAvail)
	e.logger.WithFields(logrus.Fields{
		"binance_available": binanceAvail,
		"drift_available":   driftAvail,
		"active_orders":     decision.ActiveOrderCount,
		"allocation":        decision.AllocationUSD,
	}).Info("Allocation planned")
	if !decision.CanTrade {
		return failure(decision.Reason)
	}
	tradeSize := decision.AllocationUSD

	direction := ResolveDirection(opp)
	e.logger.WithField("direction", direction.Action).Info(direction.Reasoning)

	balanceCheck := e.gate.Check(ctx, direction, opp.Symbol, tradeSize, opp.SpotPrice)
	if !balanceCheck.Sufficient {
		e.logger.WithFields(logrus.Fields{
			"required":  balanceCheck.RequiredAmount,
			"available": balanceCheck.AvailableAmount,
		}).Warn("Insufficient balance for trade")
		res := failure(balanceCheck.RejectionReason)
		res.Direction = &direction
		return res
	}

	e.tracker.RecordAttempt()

	quantity := tradeSize / opp.SpotPrice
	spotSymbol := models.SpotSymbol(opp.Symbol)
	perpMarket := models.PerpMarket(opp.Symbol)

	// Legs are placed sequentially, spot first: the perpetual leg only
	// makes sense once spot capital is actually committed.
	spotOrder, err := e.spot.PlaceOrder(ctx, spotSymbol, direction.SpotSide, quantity)
	if err != nil {
		e.logger.WithError(err).Error("Spot order failed")
		res := failure(fmt.Sprintf("spot order failed: %v", err))
		res.Direction = &direction
		return res
	}
	e.logger.WithField("order_id", spotOrder.OrderID).Info("Spot leg placed")

	perpOrder, err := e.perp.PlacePerpOrder(ctx, perpMarket, quantity, opp.PerpPrice, direction.PerpSide)
	if err != nil {
		// One-sided exposure: report the filled spot leg so an operator
		// can reconcile. No automatic unwind.
		e.logger.WithError(err).WithField("spot_order_id", spotOrder.OrderID).
			Error("Perp order failed after spot leg filled")
		res := failure(fmt.Sprintf("perp order failed: %v", err))
		res.Direction = &direction
		res.SpotOrder = spotOrder
		return res
	}
	e.logger.WithField("order_id", perpOrder.OrderID).Info("Perp leg placed")

	details := profitBreakdown(opp, direction, quantity, tradeSize, e.feeRate)

	orderID := e.tracker.NextOrderID()
	e.tracker.RecordSuccess(models.OrderRecord{
		OrderID:            orderID,
		AllocatedAmountUSD: tradeSize,
		OpenedAt:           time.Now(),
		Symbol:             opp.Symbol,
		Direction:          direction.Action,
	})

	e.logger.WithFields(logrus.Fields{
		"order_id":   orderID,
		"net_profit": details.NetProfit,
		"roi":        details.ROIPercent,
	}).Info("Arbitrage executed")

	return &models.ExecutionResult{
		Success:   true,
		Direction: &direction,
		SpotOrder: spotOrder,
		PerpOrder: perpOrder,
		Details:   details,
	}
}

// fetchBalances queries both venues concurrently. Capital is bottlenecked
// by whichever venue has less, so both numbers are needed before sizing.
func (e *Executor) fetchBalances(ctx context.Context) (binanceAvail, driftAvail float64, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		balances, err := e.spot.GetBalances(gctx)
		if err != nil {
			return fmt.Errorf("binance balances: %w", err)
		}
		binanceAvail = balances["USDT"]
		return nil
	})

	g.Go(func() error {
		info, err := e.perp.GetAccountInfo(gctx)
		if err != nil {
			return fmt.Errorf("drift account info: %w", err)
		}
		if info != nil {
			driftAvail = info.FreeCollateral
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return binanceAvail, driftAvail, nil
}

func profitBreakdown(opp *models.Opportunity, direction models.TradeDirection, quantity, tradeSize, feeRate float64) *models.TradeDetails {
	var profitPerUnit float64
	if direction.SpotSide == models.OrderSideBuy {
		profitPerUnit = opp.PerpPrice - opp.SpotPrice
	} else {
		profitPerUnit = opp.SpotPrice - opp.PerpPrice
	}

	gross := profitPerUnit * quantity
	fees := tradeSize * feeRate
	net := gross - fees

	return &models.TradeDetails{
		Quantity:      quantity,
		TradeSizeUSD:  tradeSize,
		SpotPrice:     opp.SpotPrice,
		PerpPrice:     opp.PerpPrice,
		ProfitPerUnit: profitPerUnit,
		GrossProfit:   gross,
		EstimatedFees: fees,
		NetProfit:     net,
		ROIPercent:    (net / tradeSize) * 100,
	}
}

func failure(reason string) *models.ExecutionResult {
	return &models.ExecutionResult{Success: false, Error: reason}
}
