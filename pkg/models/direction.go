package models

// OrderSide is the side of the spot leg.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// PerpSide is the side of the perpetual leg.
type PerpSide string

const (
	PerpSideLong  PerpSide = "LONG"
	PerpSideShort PerpSide = "SHORT"
)

// DirectionAction identifies which venue buys and which sells.
type DirectionAction string

const (
	BuySpotSellPerp DirectionAction = "BUY_SPOT_SELL_PERP"
	SellSpotBuyPerp DirectionAction = "SELL_SPOT_BUY_PERP"
)

// TradeDirection carries the concrete side for each leg plus a
// human-readable rationale used in alerts and logs.
type TradeDirection struct {
	Action    DirectionAction
	SpotSide  OrderSide
	PerpSide  PerpSide
	Reasoning string
}
