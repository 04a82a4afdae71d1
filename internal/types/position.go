package types

import "time"

// Position is an open simulated long exposure.
type Position struct {
	EntryTime  time.Time `json:"entry_time" yaml:"entry_time"`
	EntryPrice float64   `json:"entry_price" yaml:"entry_price"`
	StopLoss   float64   `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit float64   `json:"take_profit" yaml:"take_profit"`
	// Size is the number of units of the underlying held.
	Size float64 `json:"size" yaml:"size"`
	// EntryBalance is the account balance when the position was opened.
	EntryBalance float64 `json:"entry_balance" yaml:"entry_balance"`
}

// UnrealizedPnL returns the profit the position would realize at the given price.
func (p Position) UnrealizedPnL(price float64) float64 {
	return (price - p.EntryPrice) * p.Size
}
