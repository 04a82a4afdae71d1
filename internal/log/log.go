package log

import (
	"time"

	"github.com/rxtech-lab/okx-backtest/internal/types"
)

// LogEntry is one entry of the signal journal, stamped with the bar time
// rather than the wall clock so journals are reproducible.
type LogEntry struct {
	// Timestamp is the bar time when this entry was created.
	Timestamp time.Time
	// Symbol is the trading symbol associated with this entry.
	Symbol string
	// Strategy is the name of the strategy that produced the entry.
	Strategy string
	// Level is the severity level of the entry.
	Level types.LogLevel
	// Message is the entry content.
	Message string
	// Fields contains optional structured key-value data.
	Fields map[string]string
}

// Log is the interface for storing strategy journal entries.
type Log interface {
	// Log stores a log entry.
	Log(entry LogEntry) error
	// GetLogs retrieves all stored log entries in insertion order.
	GetLogs() ([]LogEntry, error)
}
