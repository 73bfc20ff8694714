package arb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mwatts/driftarb/pkg/models"
	"github.com/mwatts/driftarb/pkg/notify"
)

// Bot ties the detector, executor and tracker to the price feed. Each tick
// is evaluated independently; any error inside one evaluation is contained
// to that evaluation and never stops the stream.
type Bot struct {
	detector *Detector
	executor *Executor
	tracker  *Tracker
	notifier *notify.Notifier
	logger   *logrus.Logger

	reportInterval time.Duration
	now            func() time.Time

	mu         sync.Mutex
	lastReport time.Time
}

// NewBot wires the decision core together. The now function feeds the
// periodic-report trigger so tests can drive it without wall-clock waits;
// pass time.Now in production.
func NewBot(detector *Detector, executor *Executor, tracker *Tracker, notifier *notify.Notifier, reportInterval time.Duration, now func() time.Time, logger *logrus.Logger) *Bot {
	if now == nil {
		now = time.Now
	}
	return &Bot{
		detector:       detector,
		executor:       executor,
		tracker:        tracker,
		notifier:       notifier,
		logger:         logger,
		reportInterval: reportInterval,
		now:            now,
		lastReport:     now(),
	}
}

// OnTick evaluates one price sample and, on a detected opportunity, runs
// the full execution chain and emits the matching notifications.
func (b *Bot) OnTick(ctx context.Context, quote models.PriceQuote) {
	opp := b.detector.Evaluate(quote.Symbol, quote.SpotPrice, quote.PerpPrice)
	if opp == nil {
		b.maybeSendReport(ctx)
		return
	}

	b.tracker.RecordOpportunity()
	b.logger.WithFields(logrus.Fields{
		"symbol":           quote.Symbol,
		"spread":           opp.SpreadFraction,
		"potential_profit": opp.PotentialProfitUSD,
	}).Info("Arbitrage opportunity detected")

	result := b.executor.Execute(ctx, opp)

	if result.Success {
		b.notifier.Notify(ctx, notify.EventTrade, "Arbitrage Executed", b.formatTrade(opp, result))
	} else {
		b.logger.WithField("reason", result.Error).Info("Opportunity not executed")
		b.notifier.Notify(ctx, notify.EventOpportunity, "Arbitrage Opportunity", b.formatOpportunity(opp, result))
	}

	b.maybeSendReport(ctx)
}

// NotifyStartup announces the configured session.
func (b *Bot) NotifyStartup(ctx context.Context, pairs []string) {
	msg := fmt.Sprintf("Monitoring pairs: %s\nDynamic allocation and concurrent order management active",
		strings.Join(pairs, ", "))
	b.notifier.Notify(ctx, notify.EventStartup, "Drift-Binance Arbitrage Bot Started", msg)
}

// NotifyShutdown emits the final session summary.
func (b *Bot) NotifyShutdown(ctx context.Context) {
	stats := b.tracker.Stats()
	msg := fmt.Sprintf(
		"Opportunities found: %d\nTrades attempted: %d\nSuccessful trades: %d\nSuccess rate: %.1f%%\nActive orders: %d\nTotal orders processed: %d",
		stats.OpportunitiesFound, stats.TradesAttempted, stats.TradesSuccessful,
		stats.SuccessRate*100, stats.ActiveOrders, stats.TotalOrders)
	b.notifier.Notify(ctx, notify.EventShutdown, "Arbitrage Bot Shutdown", msg)
}

func (b *Bot) maybeSendReport(ctx context.Context) {
	b.mu.Lock()
	due := b.now().Sub(b.lastReport) >= b.reportInterval
	if due {
		b.lastReport = b.now()
	}
	b.mu.Unlock()

	if !due {
		return
	}

	stats := b.tracker.Stats()
	msg := fmt.Sprintf(
		"Opportunities: %d\nAttempts: %d\nSuccessful: %d\nSuccess rate: %.1f%%\nActive orders: %d/%d",
		stats.OpportunitiesFound, stats.TradesAttempted, stats.TradesSuccessful,
		stats.SuccessRate*100, stats.ActiveOrders, stats.MaxConcurrent)
	b.notifier.Notify(ctx, notify.EventSummary, "Periodic Trading Report", msg)
	b.logger.Info("Periodic report sent")
}

func (b *Bot) formatTrade(opp *models.Opportunity, result *models.ExecutionResult) string {
	d := result.Details
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", result.Direction.Reasoning)
	fmt.Fprintf(&sb, "Trade size: $%.2f (%.4f units)\n", d.TradeSizeUSD, d.Quantity)
	fmt.Fprintf(&sb, "Net profit: $%.2f (ROI %.2f%%, fees $%.2f)\n", d.NetProfit, d.ROIPercent, d.EstimatedFees)
	fmt.Fprintf(&sb, "Spot order: %s | Perp order: %s\n", result.SpotOrder.OrderID, result.PerpOrder.OrderID)

	stats := b.tracker.Stats()
	fmt.Fprintf(&sb, "Session: %d opportunities, %d attempts, %.1f%% success",
		stats.OpportunitiesFound, stats.TradesAttempted, stats.SuccessRate*100)
	return sb.String()
}

func (b *Bot) formatOpportunity(opp *models.Opportunity, result *models.ExecutionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s spread %.3f%%\n", opp.Symbol, opp.SpreadFraction*100)
	fmt.Fprintf(&sb, "Spot: $%.4f | Perp: $%.4f\n", opp.SpotPrice, opp.PerpPrice)
	fmt.Fprintf(&sb, "Expected profit: $%.2f\n", opp.PotentialProfitUSD)
	if result != nil && result.Error != "" {
		fmt.Fprintf(&sb, "Not executed: %s", result.Error)
	}
	return sb.String()
}
