package arb

import (
	"fmt"
	"math"

	"github.com/mwatts/driftarb/pkg/models"
)

// Limits are the static sizing constraints applied to every allocation.
type Limits struct {
	MinTradeSize        float64
	MaxTradeSize        float64
	MaxConcurrentOrders int
	FirstOrderFraction  float64
	SecondOrderFraction float64
}

// Planner computes the USD notional for the next trade from the set of
// currently open orders and the capital available on each venue. It is a
// pure function of its arguments; balances are fetched by the caller.
//
// The schedule is deliberately conservative: the first concurrent position
// commits under half of effective capital, leaving slack for a second,
// which then takes nearly all of what remains. The concurrency cap
// prevents a third exposure.
type Planner struct {
	limits Limits
}

func NewPlanner(limits Limits) *Planner {
	return &Planner{limits: limits}
}

// Plan sizes the next trade. Effective capital is the lesser of the two
// venues' balances since both legs must be funded simultaneously.
func (p *Planner) Plan(active []models.OrderRecord, binanceAvailable, driftAvailable float64) models.AllocationDecision {
	effective := math.Min(binanceAvailable, driftAvailable)
	count := len(active)

	if count >= p.limits.MaxConcurrentOrders {
		return models.AllocationDecision{
			CanTrade:         false,
			AllocationUSD:    0,
			ActiveOrderCount: count,
			Reason:           fmt.Sprintf("maximum concurrent orders (%d) reached", p.limits.MaxConcurrentOrders),
		}
	}

	var allocation float64
	switch count {
	case 0:
		allocation = effective * p.limits.FirstOrderFraction
	default:
		var used float64
		for _, ord := range active {
			used += ord.AllocatedAmountUSD
		}
		allocation = (effective - used) * p.limits.SecondOrderFraction
	}

	// Too small to justify fees and slippage.
	raw := allocation
	if allocation < p.limits.MinTradeSize {
		allocation = 0
	} else if allocation > p.limits.MaxTradeSize {
		allocation = p.limits.MaxTradeSize
	}

	canTrade := allocation >= p.limits.MinTradeSize
	reason := fmt.Sprintf("order %d of %d: $%.2f available",
		count+1, p.limits.MaxConcurrentOrders, allocation)
	if !canTrade {
		reason = fmt.Sprintf("allocation $%.2f below minimum trade size $%.2f",
			raw, p.limits.MinTradeSize)
	}

	return models.AllocationDecision{
		CanTrade:         canTrade,
		AllocationUSD:    allocation,
		ActiveOrderCount: count,
		Reason:           reason,
	}
}
