package main

import "github.com/rxtech-lab/okx-backtest/internal/types"

// TradesLoadedMsg carries the trades of the selected run.
type TradesLoadedMsg struct {
	Folder string
	Trades []types.TradeRecord
}

// LoadErrorMsg reports a failure to read run files.
type LoadErrorMsg struct {
	Err error
}
