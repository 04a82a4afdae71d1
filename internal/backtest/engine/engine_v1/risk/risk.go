package risk

import "math"

// RiskManager decides how many units to buy when a long signal fires.
type RiskManager interface {
	// PositionSize returns the number of units to buy. Zero means "do not open".
	PositionSize(balance, entryPrice, stopLoss float64) float64
}

// SizeForRisk returns the position size that loses exactly balance*riskFraction
// when the stop is hit at stopLossDistance below the entry. A non-positive
// distance yields 0.
func SizeForRisk(balance, riskFraction, stopLossDistance float64) float64 {
	if stopLossDistance <= 0 {
		return 0
	}

	return (balance * riskFraction) / stopLossDistance
}

// FixedFractionRiskManager risks a fixed fraction of the current balance on every trade.
type FixedFractionRiskManager struct {
	RiskFraction float64
}

// NewFixedFractionRiskManager creates a risk manager risking riskFraction of the balance per trade.
func NewFixedFractionRiskManager(riskFraction float64) RiskManager {
	return &FixedFractionRiskManager{RiskFraction: riskFraction}
}

// PositionSize implements RiskManager.
func (r *FixedFractionRiskManager) PositionSize(balance, entryPrice, stopLoss float64) float64 {
	return SizeForRisk(balance, r.RiskFraction, math.Abs(entryPrice-stopLoss))
}
