package engine

import (
	"context"

	"github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1/risk"
	"github.com/rxtech-lab/okx-backtest/internal/strategy"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when the entire backtest begins.
type OnBacktestStartCallback func(totalStrategies int, totalDataFiles int) error

// OnBacktestEndCallback is called when the entire backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnStrategyStartCallback is called when a strategy iteration begins.
type OnStrategyStartCallback func(strategyIndex int, strategyName string, totalStrategies int) error

// OnStrategyEndCallback is called when a strategy iteration ends.
type OnStrategyEndCallback func(strategyIndex int, strategyName string)

// OnRunStartCallback is called when processing of a strategy+data file combination begins.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, strategyName string, dataFileIndex int, dataFilePath string, totalDataPoints int) error

// OnRunEndCallback is called after the results of a run were written.
type OnRunEndCallback func(result types.BacktestResult, resultFolderPath string) error

// OnProcessDataCallback is called for each data point processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnStrategyStart *OnStrategyStartCallback
	OnStrategyEnd   *OnStrategyEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataPath sets the path to the market data files. Accepts glob
	// patterns for batch loading (e.g., "data/*.parquet").
	SetDataPath(path string) error
	// SetResultsFolder sets the output directory for saving backtest results.
	// Each run is written to <folder>/<strategy>/<data file name>.
	SetResultsFolder(folder string) error
	// LoadStrategy adds a strategy. config is passed to its Initialize before
	// every run so each data file starts from a fresh strategy state.
	// Could be called multiple times to load multiple strategies.
	LoadStrategy(strategy strategy.Strategy, config string) error
	// LoadStrategyFromConfig builds a built-in strategy by name.
	LoadStrategyFromConfig(name string, config string) error
	// SetDataSource sets the data source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// SetRiskManager replaces the default fixed fraction risk manager.
	SetRiskManager(riskManager risk.RiskManager) error
	// Run runs every loaded strategy over every data file.
	// The context can be used to cancel the backtest operation.
	// Use LifecycleCallbacks to receive notifications at different phases of the backtest.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
