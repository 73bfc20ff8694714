package arb

import (
	"strings"
	"testing"
	"time"

	"github.com/mwatts/driftarb/pkg/models"
)

func successRecord(id string) models.OrderRecord {
	return models.OrderRecord{
		OrderID:            id,
		AllocatedAmountUSD: 100,
		OpenedAt:           time.Now(),
		Symbol:             "SOL/USDT",
		Direction:          models.BuySpotSellPerp,
	}
}

func TestTrackerConcurrencyCap(t *testing.T) {
	tracker := NewTracker(2)

	if !tracker.CanAcceptNewOrder() {
		t.Fatal("Empty tracker should accept orders")
	}

	tracker.RecordSuccess(successRecord("ARB_1_1"))
	if !tracker.CanAcceptNewOrder() {
		t.Error("Tracker with one order should accept a second")
	}

	tracker.RecordSuccess(successRecord("ARB_2_1"))
	if tracker.CanAcceptNewOrder() {
		t.Error("Tracker at the cap must reject new orders")
	}

	if err := tracker.CloseOrder("ARB_1_1"); err != nil {
		t.Fatalf("CloseOrder failed: %v", err)
	}
	if !tracker.CanAcceptNewOrder() {
		t.Error("Closing an order should relieve the cap")
	}
}

func TestTrackerCloseUnknownOrder(t *testing.T) {
	tracker := NewTracker(2)
	if err := tracker.CloseOrder("ARB_99_1"); err == nil {
		t.Error("Expected error closing unknown order")
	}
}

func TestTrackerCounters(t *testing.T) {
	tracker := NewTracker(2)

	tracker.RecordOpportunity()
	tracker.RecordOpportunity()
	tracker.RecordOpportunity()
	tracker.RecordAttempt()
	tracker.RecordAttempt()
	tracker.RecordSuccess(successRecord("ARB_1_1"))

	stats := tracker.Stats()
	if stats.OpportunitiesFound != 3 {
		t.Errorf("OpportunitiesFound = %d, want 3", stats.OpportunitiesFound)
	}
	if stats.TradesAttempted != 2 {
		t.Errorf("TradesAttempted = %d, want 2", stats.TradesAttempted)
	}
	if stats.TradesSuccessful != 1 {
		t.Errorf("TradesSuccessful = %d, want 1", stats.TradesSuccessful)
	}
	if stats.SuccessRate != 0.5 {
		t.Errorf("SuccessRate = %v, want 0.5", stats.SuccessRate)
	}
	if stats.ActiveOrders != 1 {
		t.Errorf("ActiveOrders = %d, want 1", stats.ActiveOrders)
	}
}

func TestTrackerSuccessRateWithoutAttempts(t *testing.T) {
	tracker := NewTracker(2)
	if rate := tracker.Stats().SuccessRate; rate != 0 {
		t.Errorf("SuccessRate with no attempts = %v, want 0", rate)
	}
}

func TestTrackerOrderIDsUnique(t *testing.T) {
	tracker := NewTracker(2)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := tracker.NextOrderID()
		if !strings.HasPrefix(id, "ARB_") {
			t.Fatalf("Unexpected order id format: %s", id)
		}
		if seen[id] {
			t.Fatalf("Duplicate order id: %s", id)
		}
		seen[id] = true
	}

	if got := tracker.Stats().TotalOrders; got != 100 {
		t.Errorf("TotalOrders = %d, want 100", got)
	}
}

func TestTrackerActiveOrdersIsCopy(t *testing.T) {
	tracker := NewTracker(2)
	tracker.RecordSuccess(successRecord("ARB_1_1"))

	view := tracker.ActiveOrders()
	view[0].OrderID = "mutated"

	if tracker.ActiveOrders()[0].OrderID != "ARB_1_1" {
		t.Error("ActiveOrders must return a copy, not the internal slice")
	}
}

func TestTrackerRecordSuccessMarksOutcome(t *testing.T) {
	tracker := NewTracker(2)
	rec := successRecord("ARB_1_1")
	rec.Outcome = models.OutcomePending
	tracker.RecordSuccess(rec)

	if got := tracker.ActiveOrders()[0].Outcome; got != models.OutcomeSuccess {
		t.Errorf("Outcome = %v, want %v", got, models.OutcomeSuccess)
	}
}
