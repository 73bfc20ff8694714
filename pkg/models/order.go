package models

import (
	"time"
)

// VenueOrder is the confirmation a venue returns for a placed leg.
type VenueOrder struct {
	OrderID   string
	Symbol    string
	Side      string
	Quantity  float64
	Status    string
	CreatedAt time.Time
}

// OrderOutcome is the terminal state of an arbitrage position pair.
type OrderOutcome string

const (
	OutcomePending OrderOutcome = "pending"
	OutcomeSuccess OrderOutcome = "success"
	OutcomeFailed  OrderOutcome = "failed"
)

// OrderRecord is one successfully opened arbitrage position pair. Records
// are owned exclusively by the lifecycle tracker and count against the
// concurrency cap until closed.
type OrderRecord struct {
	OrderID            string
	AllocatedAmountUSD float64
	OpenedAt           time.Time
	Symbol             string
	Direction          DirectionAction
	Outcome            OrderOutcome
}

// BalanceCheckResult reports whether the spot venue holds enough of the
// required asset for a proposed trade. Never cached; balances are
// venue-authoritative and can change between calls.
type BalanceCheckResult struct {
	Sufficient      bool
	Asset           string
	RequiredAmount  float64
	AvailableAmount float64
	RejectionReason string
}

// AllocationDecision is the planner's sizing verdict for the next trade.
type AllocationDecision struct {
	CanTrade         bool
	AllocationUSD    float64
	ActiveOrderCount int
	Reason           string
}

// TradeDetails is the post-execution profit breakdown for one arbitrage.
type TradeDetails struct {
	Quantity      float64
	TradeSizeUSD  float64
	SpotPrice     float64
	PerpPrice     float64
	ProfitPerUnit float64
	GrossProfit   float64
	EstimatedFees float64
	NetProfit     float64
	ROIPercent    float64
}

// ExecutionResult is the structured outcome of one arbitrage attempt. All
// failure paths populate Error and leave Success false; a spot leg that
// filled before the perpetual leg failed is still attached so the operator
// can reconcile the one-sided exposure.
type ExecutionResult struct {
	Success   bool
	Error     string
	Direction *TradeDirection
	SpotOrder *VenueOrder
	PerpOrder *VenueOrder
	Details   *TradeDetails
}

// AccountInfo is the perpetual venue's collateral snapshot.
type AccountInfo struct {
	TotalCollateral float64
	FreeCollateral  float64
}
