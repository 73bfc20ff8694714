package arb

import (
	"math"

	"github.com/mwatts/driftarb/pkg/models"
)

// Detector decides whether a pair of simultaneous prices constitutes a
// tradable spread. It holds only static thresholds, so Evaluate is safe to
// call on every tick and always yields the same output for the same input.
type Detector struct {
	minSpread         float64
	referenceNotional float64
}

func NewDetector(minSpread, referenceNotional float64) *Detector {
	return &Detector{
		minSpread:         minSpread,
		referenceNotional: referenceNotional,
	}
}

// Evaluate returns a detected opportunity, or nil when the sample is
// invalid or the spread is below the configured minimum.
func (d *Detector) Evaluate(symbol string, spotPrice, perpPrice float64) *models.Opportunity {
	if symbol == "" {
		return nil
	}
	if !isPositiveFinite(spotPrice) || !isPositiveFinite(perpPrice) {
		return nil
	}

	spread := math.Abs(perpPrice-spotPrice) / math.Min(spotPrice, perpPrice)
	if spread < d.minSpread || spread == 0 {
		return nil
	}

	return &models.Opportunity{
		Symbol:             symbol,
		SpotPrice:          spotPrice,
		PerpPrice:          perpPrice,
		SpreadFraction:     spread,
		PotentialProfitUSD: spread * d.referenceNotional,
	}
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
