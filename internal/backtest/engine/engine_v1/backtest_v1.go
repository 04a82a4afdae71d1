package engine

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1/risk"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/strategy"
	"github.com/rxtech-lab/okx-backtest/internal/strategy/strategyobs"
	internaltrace "github.com/rxtech-lab/okx-backtest/internal/trace"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/internal/version"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const statsFileName = "stats.yaml"

type loadedStrategy struct {
	strategy strategy.Strategy
	config   string
}

type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	strategies    []loadedStrategy
	dataPaths     []string
	resultsFolder string
	log           *logger.Logger
	riskManager   risk.RiskManager
	datasource    datasource.DataSource
	journal       *BacktestLog
	tracer        trace.Tracer
}

func NewBacktestEngineV1() engine.Engine {
	return NewBacktestEngineV1WithLogger(nil)
}

// NewBacktestEngineV1WithLogger creates an engine that logs to log. A nil
// logger is replaced by a production logger in Initialize.
func NewBacktestEngineV1WithLogger(log *logger.Logger) *BacktestEngineV1 {
	return &BacktestEngineV1{
		config:        EmptyConfig(),
		strategies:    nil,
		dataPaths:     nil,
		resultsFolder: "",
		log:           log,
		riskManager:   nil,
		datasource:    nil,
		journal:       nil,
		tracer:        internaltrace.Tracer(),
	}
}

// Initialize implements engine.Engine. Omitted fields keep their defaults.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed := DefaultConfig()
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	if err := parsed.Validate(); err != nil {
		return err
	}

	b.config = parsed

	if b.log == nil {
		log, err := logger.NewLogger()
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
		}

		b.log = log
	}

	if b.journal == nil {
		journal, err := NewBacktestLog(b.log)
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create signal journal", err)
		}

		b.journal = journal
	}

	b.log.Debug("Backtest engine initialized",
		zap.Float64("initial_balance", b.config.InitialBalance),
		zap.Float64("risk_per_trade", b.config.RiskPerTrade),
	)

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(strategy strategy.Strategy, config string) error {
	if strategy == nil {
		return errors.New(errors.ErrCodeStrategyNotLoaded, "strategy is nil")
	}

	b.strategies = append(b.strategies, loadedStrategy{strategy: strategy, config: config})
	b.logger().Debug("Strategy loaded",
		zap.String("strategy", strategy.Name()),
		zap.Int("total_strategies", len(b.strategies)),
	)

	return nil
}

// LoadStrategyFromConfig implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategyFromConfig(name string, config string) error {
	built, err := strategy.NewFromConfig(name, config)
	if err != nil {
		return err
	}

	return b.LoadStrategy(built, config)
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	files, err := filepath.Glob(path)
	if err != nil {
		b.logger().Error("Failed to set data path",
			zap.String("path", path),
			zap.Error(err),
		)

		return errors.Wrapf(errors.ErrCodeBacktestDataPathError, err, "invalid data path pattern %q", path)
	}

	absolutePaths := make([]string, len(files))

	for i, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestDataPathError, err, "failed to get absolute path of %s", file)
		}

		absolutePaths[i] = absPath
	}

	b.dataPaths = absolutePaths
	b.logger().Debug("Data paths set",
		zap.Strings("files", absolutePaths),
	)

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.logger().Debug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

func (b *BacktestEngineV1) SetDataSource(datasource datasource.DataSource) error {
	b.datasource = datasource

	return nil
}

func (b *BacktestEngineV1) SetRiskManager(riskManager risk.RiskManager) error {
	b.riskManager = riskManager

	return nil
}

// Run implements engine.Engine. The results folder is recreated first.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	if err := b.preRunCheck(); err != nil {
		return err
	}

	if err := os.RemoveAll(b.resultsFolder); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to clean results folder", err)
	}

	if err := os.MkdirAll(b.resultsFolder, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create results folder", err)
	}

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(b.strategies), len(b.dataPaths)); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "OnBacktestStart callback failed", err)
		}
	}

	names := make([]string, len(b.strategies))
	for i, loaded := range b.strategies {
		names[i] = loaded.strategy.Name()
	}

	labels := strategyLabels(names)

	for strategyIndex, loaded := range b.strategies {
		if callbacks.OnStrategyStart != nil {
			if err := (*callbacks.OnStrategyStart)(strategyIndex, names[strategyIndex], len(b.strategies)); err != nil {
				return errors.Wrap(errors.ErrCodeCallbackFailed, "OnStrategyStart callback failed", err)
			}
		}

		for dataFileIndex, dataPath := range b.dataPaths {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", err)
			}

			resultFolder := getResultFolder(b.resultsFolder, labels[strategyIndex], dataPath, b.config)
			if err := b.runOne(ctx, loaded, dataFileIndex, dataPath, resultFolder, callbacks); err != nil {
				return err
			}
		}

		if callbacks.OnStrategyEnd != nil {
			(*callbacks.OnStrategyEnd)(strategyIndex, names[strategyIndex])
		}
	}

	return nil
}

// runOne simulates one strategy over one data file and writes its results.
func (b *BacktestEngineV1) runOne(
	ctx context.Context,
	loaded loadedStrategy,
	dataFileIndex int,
	dataPath string,
	resultFolder string,
	callbacks engine.LifecycleCallbacks,
) (err error) {
	runID := uuid.NewString()
	name := loaded.strategy.Name()

	ctx, span := b.tracer.Start(ctx, "backtest.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("strategy", name),
		attribute.String("data.path", dataPath),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	if err := loaded.strategy.Initialize(loaded.config); err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to initialize strategy %s", name)
	}

	if err := b.datasource.Initialize(dataPath); err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestDataPathError, err, "failed to load data file %s", dataPath)
	}

	count, err := b.datasource.Count(b.config.StartTime, b.config.EndTime)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, name, dataFileIndex, dataPath, count); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "OnRunStart callback failed", err)
		}
	}

	bars, err := datasource.LoadBars(b.datasource, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read bars from %s", dataPath)
	}

	if err := b.journal.Cleanup(); err != nil {
		return err
	}

	simulator, err := NewSimulator(b.config, b.riskManager, b.log)
	if err != nil {
		return err
	}

	onProgress := optional.None[ProgressCallback]()
	if callbacks.OnProcessData != nil {
		onProgress = optional.Some(ProgressCallback(*callbacks.OnProcessData))
	}

	b.log.Info("Running strategy",
		zap.String("run_id", runID),
		zap.String("strategy", name),
		zap.String("data", dataPath),
		zap.Int("bars", len(bars)),
		zap.String("result", resultFolder),
	)

	observed := strategyobs.Wrap(loaded.strategy, strategyobs.Options{
		Logger:  b.log,
		Journal: b.journal,
		Tracer:  b.tracer,
		Context: ctx,
	})

	result, err := simulator.Run(ctx, observed, bars, onProgress)
	if err != nil {
		return err
	}

	result.Report.ID = runID
	result.Report.Timestamp = time.Now().UTC()
	result.Report.EngineVersion = version.GetVersion()
	result.Report.Strategy = types.StrategyInfo{Name: name, Config: loaded.config}
	result.Report.DataPath = dataPath

	if err := b.writeResults(&result, resultFolder); err != nil {
		return err
	}

	span.SetAttributes(
		attribute.Int("report.total_trades", result.Report.TotalTrades),
		attribute.Float64("report.total_return", result.Report.TotalReturn),
	)

	if callbacks.OnRunEnd != nil {
		if err := (*callbacks.OnRunEnd)(result, resultFolder); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "OnRunEnd callback failed", err)
		}
	}

	return nil
}

// writeResults writes trades, equity curve, signal journal and stats.yaml
// into resultFolder and records their paths in the report.
func (b *BacktestEngineV1) writeResults(result *types.BacktestResult, resultFolder string) error {
	tradesPath, equityPath, err := WriteRunResults(b.log, resultFolder, result.Trades, result.EquityCurve)
	if err != nil {
		return err
	}

	signalsPath, err := b.journal.Write(resultFolder)
	if err != nil {
		return err
	}

	result.Report.TradesFilePath = tradesPath
	result.Report.EquityCurveFilePath = equityPath
	result.Report.SignalsFilePath = signalsPath

	if err := types.WriteReport(filepath.Join(resultFolder, statsFileName), result.Report); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to write stats", err)
	}

	return nil
}

func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to generate schema", err)
	}

	return schema, nil
}

// Close releases the signal journal.
func (b *BacktestEngineV1) Close() error {
	if b.journal == nil {
		return nil
	}

	return b.journal.Close()
}

func (b *BacktestEngineV1) preRunCheck() error {
	if b.log == nil || b.journal == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "engine is not initialized")
	}

	if len(b.strategies) == 0 {
		b.log.Error("No strategies loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	if len(b.dataPaths) == 0 {
		b.log.Error("No data paths loaded")

		return errors.New(errors.ErrCodeBacktestNoDataPaths, "no data paths loaded")
	}

	if b.resultsFolder == "" {
		b.log.Error("No results folder set")

		return errors.New(errors.ErrCodeBacktestNoResultsDir, "no results folder set")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	return nil
}

func (b *BacktestEngineV1) logger() *logger.Logger {
	if b.log == nil {
		return logger.NewNopLogger()
	}

	return b.log
}
