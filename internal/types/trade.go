package types

import (
	"time"
)

type PurchaseType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

// CloseReason tells why a position was closed.
type CloseReason string

const (
	CloseReasonSignal     CloseReason = "signal"
	CloseReasonStopLoss   CloseReason = "stop_loss"
	CloseReasonTakeProfit CloseReason = "take_profit"
)

// TradeRecord is one append-only entry of the trade log. Every open produces
// a BUY record and every close produces a SELL record.
type TradeRecord struct {
	ID   string       `csv:"id" json:"id" yaml:"id"`
	Side PurchaseType `csv:"side" json:"side" yaml:"side"`
	// Time is the bar time of the open (BUY) or close (SELL).
	Time time.Time `csv:"time" json:"time" yaml:"time"`
	// Price is the execution price: the entry price for BUY, the exit price for SELL.
	Price float64 `csv:"price" json:"price" yaml:"price"`
	Size  float64 `csv:"size" json:"size" yaml:"size"`
	// Balance is the account balance after this record was applied.
	Balance float64 `csv:"balance" json:"balance" yaml:"balance"`

	// The fields below are only set on SELL records.
	EntryTime  time.Time   `csv:"entry_time" json:"entry_time,omitempty" yaml:"entry_time,omitempty"`
	EntryPrice float64     `csv:"entry_price" json:"entry_price,omitempty" yaml:"entry_price,omitempty"`
	ExitPrice  float64     `csv:"exit_price" json:"exit_price,omitempty" yaml:"exit_price,omitempty"`
	Profit     float64     `csv:"profit" json:"profit,omitempty" yaml:"profit,omitempty"`
	Reason     CloseReason `csv:"reason" json:"reason,omitempty" yaml:"reason,omitempty"`
}

// IsClose reports whether the record is a position close.
func (t TradeRecord) IsClose() bool {
	return t.Side == PurchaseTypeSell
}

// HoldingTime returns how long the closed position was held. Zero for BUY records.
func (t TradeRecord) HoldingTime() time.Duration {
	if !t.IsClose() || t.EntryTime.IsZero() {
		return 0
	}

	return t.Time.Sub(t.EntryTime)
}

// EquitySample is the account balance recorded after a bar was processed.
type EquitySample struct {
	Time    time.Time `csv:"time" json:"time" yaml:"time"`
	Balance float64   `csv:"balance" json:"balance" yaml:"balance"`
}
