package writer

import (
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

// MarketDataWriter defines the interface for writing market data to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single candle. Candles may arrive in any order.
	Write(candle types.Candle) error
	// Finalize writes the candles sorted by time, one per timestamp, and returns the output path.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
