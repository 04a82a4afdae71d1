package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a closed position in seconds
	Min int `yaml:"min" json:"min"`
	// Maximum holding time of a closed position in seconds
	Max int `yaml:"max" json:"max"`
	// Average holding time of a closed position in seconds
	Avg int `yaml:"avg" json:"avg"`
}

// StrategyInfo contains metadata about the strategy that generated a report.
type StrategyInfo struct {
	Name string `yaml:"name" json:"name"`
	// Config is the raw strategy configuration the run used.
	Config string `yaml:"config,omitempty" json:"config,omitempty"`
}

// Report is the statistical summary of one backtest run.
type Report struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// EngineVersion is the version of the engine that produced the report.
	EngineVersion string `yaml:"engine_version" json:"engine_version"`
	Symbol        string `yaml:"symbol" json:"symbol"`

	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance"`
	FinalBalance   float64 `yaml:"final_balance" json:"final_balance"`
	// TotalReturn in percent.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// TotalTrades counts round trips: half of all trade records.
	TotalTrades      int `yaml:"total_trades" json:"total_trades"`
	ProfitableTrades int `yaml:"profitable_trades" json:"profitable_trades"`
	LosingTrades     int `yaml:"losing_trades" json:"losing_trades"`
	// WinRate in percent. The denominator is the number of trade records
	// (opens and closes), not the number of round trips.
	WinRate       float64 `yaml:"win_rate" json:"win_rate"`
	AverageProfit float64 `yaml:"average_profit" json:"average_profit"`
	AverageLoss   float64 `yaml:"average_loss" json:"average_loss"`
	ProfitFactor  float64 `yaml:"profit_factor" json:"profit_factor"`
	// MaxDrawdown in percent of the running peak balance.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`

	// Holding time of closed positions.
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"trade_holding_time"`
	// Strategy contains metadata about the strategy that generated the report.
	Strategy StrategyInfo `yaml:"strategy" json:"strategy"`
	// DataPath is the path to the market data file used for this backtest.
	DataPath string `yaml:"data_path,omitempty" json:"data_path,omitempty"`
	// TradesFilePath is the path to the trades parquet file.
	TradesFilePath string `yaml:"trades_file_path,omitempty" json:"trades_file_path,omitempty"`
	// EquityCurveFilePath is the path to the equity curve parquet file.
	EquityCurveFilePath string `yaml:"equity_curve_file_path,omitempty" json:"equity_curve_file_path,omitempty"`
	// SignalsFilePath is the path to the signal journal parquet file.
	SignalsFilePath string `yaml:"signals_file_path,omitempty" json:"signals_file_path,omitempty"`
}

// BacktestResult is everything a run produces: the report plus the full
// ordered trade log and equity curve.
type BacktestResult struct {
	Report      Report         `yaml:"report" json:"report"`
	Trades      []TradeRecord  `yaml:"trades" json:"trades"`
	EquityCurve []EquitySample `yaml:"equity_curve" json:"equity_curve"`
}

func WriteReport(path string, report Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report to file: %w", err)
	}

	return nil
}

func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read report file: %w", err)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return report, nil
}
