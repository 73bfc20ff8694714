package arb

import (
	"fmt"
	"sync"
	"time"

	"github.com/mwatts/driftarb/pkg/models"
)

// Stats is a read-only snapshot of the tracker's session aggregates.
type Stats struct {
	OpportunitiesFound int     `json:"opportunities_found"`
	TradesAttempted    int     `json:"trades_attempted"`
	TradesSuccessful   int     `json:"trades_successful"`
	SuccessRate        float64 `json:"success_rate"`
	ActiveOrders       int     `json:"active_orders"`
	TotalOrders        int     `json:"total_orders"`
	MaxConcurrent      int     `json:"max_concurrent"`
}

// Tracker owns the mutable set of in-flight arbitrage positions and the
// session counters. All access is serialized through its mutex so the
// concurrency-cap invariant holds even when callers run on different
// goroutines (price feed, HTTP close endpoint, reporting).
type Tracker struct {
	mu            sync.Mutex
	maxConcurrent int

	activeOrders []models.OrderRecord
	orderCounter int

	opportunitiesFound int
	tradesAttempted    int
	tradesSuccessful   int
}

func NewTracker(maxConcurrent int) *Tracker {
	return &Tracker{maxConcurrent: maxConcurrent}
}

// CanAcceptNewOrder reports whether another position fits under the cap.
func (t *Tracker) CanAcceptNewOrder() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.activeOrders) < t.maxConcurrent
}

// RecordOpportunity counts a detected opportunity, whether or not an
// execution is attempted.
func (t *Tracker) RecordOpportunity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opportunitiesFound++
}

// RecordAttempt counts an execution attempt before its outcome is known.
func (t *Tracker) RecordAttempt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tradesAttempted++
}

// NextOrderID issues a process-unique order identifier. Uniqueness comes
// from the monotonic counter; the timestamp makes ids legible in logs.
func (t *Tracker) NextOrderID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.orderCounter++
	return fmt.Sprintf("ARB_%d_%d", t.orderCounter, time.Now().Unix())
}

// RecordSuccess appends a successfully opened position to the active set.
func (t *Tracker) RecordSuccess(rec models.OrderRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec.Outcome = models.OutcomeSuccess
	t.activeOrders = append(t.activeOrders, rec)
	t.tradesSuccessful++
}

// CloseOrder removes a position from the active set, relieving the
// concurrency cap. Closing is operator-driven; the core never unwinds a
// position on its own.
func (t *Tracker) CloseOrder(orderID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, ord := range t.activeOrders {
		if ord.OrderID == orderID {
			t.activeOrders = append(t.activeOrders[:i], t.activeOrders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("order %s not found in active set", orderID)
}

// ActiveOrders returns a copy of the current active positions.
func (t *Tracker) ActiveOrders() []models.OrderRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.OrderRecord, len(t.activeOrders))
	copy(out, t.activeOrders)
	return out
}

// Stats returns the session aggregates.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	attempted := t.tradesAttempted
	if attempted < 1 {
		attempted = 1
	}

	return Stats{
		OpportunitiesFound: t.opportunitiesFound,
		TradesAttempted:    t.tradesAttempted,
		TradesSuccessful:   t.tradesSuccessful,
		SuccessRate:        float64(t.tradesSuccessful) / float64(attempted),
		ActiveOrders:       len(t.activeOrders),
		TotalOrders:        t.orderCounter,
		MaxConcurrent:      t.maxConcurrent,
	}
}
