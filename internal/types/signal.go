package types

import (
	"fmt"
	"time"
)

// SignalKind is the variant of a Signal.
type SignalKind string

const (
	// SignalKindLong asks the engine to open a long position.
	SignalKindLong SignalKind = "long"
	// SignalKindExit asks the engine to close the open position at the bar close.
	SignalKindExit SignalKind = "exit"
	// SignalKindHold takes no action.
	SignalKindHold SignalKind = "hold"
)

// Signal is a strategy's instruction for the current bar.
//
// For a long signal the expected ordering is StopLoss < Price < TakeProfit.
// The engine does not enforce it.
type Signal struct {
	Kind       SignalKind `json:"kind" yaml:"kind"`
	Price      float64    `json:"price" yaml:"price"`
	StopLoss   float64    `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit float64    `json:"take_profit" yaml:"take_profit"`
	// Reason is a free-form note from the strategy, e.g. "rsi below 30".
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NewLongSignal creates a long entry signal.
func NewLongSignal(price, stopLoss, takeProfit float64, reason string) Signal {
	return Signal{
		Kind:       SignalKindLong,
		Price:      price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		Reason:     reason,
	}
}

// NewExitSignal creates an exit signal.
func NewExitSignal(price float64, reason string) Signal {
	return Signal{
		Kind:   SignalKindExit,
		Price:  price,
		Reason: reason,
	}
}

// NewHoldSignal creates a no-op signal.
func NewHoldSignal() Signal {
	return Signal{Kind: SignalKindHold}
}

// IsKnown reports whether the signal kind is one the engine understands.
func (s Signal) IsKnown() bool {
	switch s.Kind {
	case SignalKindLong, SignalKindExit, SignalKindHold:
		return true
	default:
		return false
	}
}

func (s Signal) String() string {
	switch s.Kind {
	case SignalKindLong:
		return fmt.Sprintf("long@%.4f sl=%.4f tp=%.4f", s.Price, s.StopLoss, s.TakeProfit)
	case SignalKindExit:
		return fmt.Sprintf("exit@%.4f", s.Price)
	default:
		return string(s.Kind)
	}
}

// TriState is the numeric signal convention of legacy strategies.
type TriState int

const (
	TriStateSell TriState = -1
	TriStateHold TriState = 0
	TriStateBuy  TriState = 1
)

// SignalEvent is a signal stamped with the bar it was emitted on.
// It is what the signal journal records.
type SignalEvent struct {
	Time     time.Time `json:"time" yaml:"time"`
	Symbol   string    `json:"symbol" yaml:"symbol"`
	Strategy string    `json:"strategy" yaml:"strategy"`
	Signal   Signal    `json:"signal" yaml:"signal"`
}
