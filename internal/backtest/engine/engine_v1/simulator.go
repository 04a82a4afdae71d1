package engine

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1/risk"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/strategy"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"go.uber.org/zap"
)

// ProgressCallback is called after every processed bar. Returning an error stops the run.
type ProgressCallback func(current int, total int) error

// Simulator runs one strategy over one bar sequence.
type Simulator struct {
	config      BacktestEngineV1Config
	riskManager risk.RiskManager
	log         *logger.Logger
}

// NewSimulator validates the config and builds a simulator. A nil risk
// manager defaults to a fixed fraction manager using config.RiskPerTrade.
func NewSimulator(config BacktestEngineV1Config, riskManager risk.RiskManager, log *logger.Logger) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if riskManager == nil {
		riskManager = risk.NewFixedFractionRiskManager(config.RiskPerTrade)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Simulator{
		config:      config,
		riskManager: riskManager,
		log:         log,
	}, nil
}

// Run simulates the strategy over bars. Bars outside the configured time
// window are skipped. The strategy prepares its data once, before the loop,
// if it implements strategy.DataPreparer.
func (s *Simulator) Run(
	ctx context.Context,
	strat strategy.Strategy,
	bars []types.Bar,
	onProgress optional.Option[ProgressCallback],
) (types.BacktestResult, error) {
	if strat == nil {
		return types.BacktestResult{}, errors.New(errors.ErrCodeStrategyNotLoaded, "strategy is nil")
	}

	if err := ValidateBars(bars); err != nil {
		return types.BacktestResult{}, err
	}

	bars = s.filterWindow(bars)

	if preparer, ok := strat.(strategy.DataPreparer); ok {
		prepared, err := preparer.PrepareData(bars)
		if err != nil {
			return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err,
				"strategy %s failed to prepare data", strat.Name())
		}

		if err := ValidateBars(prepared); err != nil {
			return types.BacktestResult{}, err
		}

		bars = prepared
	}

	symbol := s.config.Symbol
	if symbol == "" && len(bars) > 0 {
		symbol = bars[0].Symbol
	}

	state := NewBacktestState(s.log, symbol, s.config.InitialBalance)

	s.log.Info("Simulation started",
		zap.String("strategy", strat.Name()),
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
		zap.Float64("initial_balance", s.config.InitialBalance),
		zap.Float64("risk_per_trade", s.config.RiskPerTrade),
	)

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "simulation cancelled", err)
		}

		if err := s.processBar(state, strat, bar); err != nil {
			return types.BacktestResult{}, err
		}

		if onProgress.IsSome() {
			if err := onProgress.Unwrap()(i+1, len(bars)); err != nil {
				return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "progress callback stopped the simulation", err)
			}
		}
	}

	trades := state.Trades()
	equity := state.EquityCurve()

	report := GenerateReport(s.config.InitialBalance, state.Balance(), trades, equity)
	report.Symbol = symbol
	report.Strategy = types.StrategyInfo{Name: strat.Name()}

	s.log.Info("Simulation finished",
		zap.String("strategy", strat.Name()),
		zap.Int("total_trades", report.TotalTrades),
		zap.Float64("final_balance", report.FinalBalance),
		zap.Float64("total_return", report.TotalReturn),
		zap.Bool("position_open", state.HasOpenPosition()),
	)

	return types.BacktestResult{
		Report:      report,
		Trades:      trades,
		EquityCurve: equity,
	}, nil
}

// processBar applies, in order, the protective exit, the strategy signals and
// the equity sample of one bar.
func (s *Simulator) processBar(state *BacktestState, strat strategy.Strategy, bar types.Bar) error {
	if err := s.checkProtectiveExit(state, bar); err != nil {
		return err
	}

	signals, err := strat.OnData(bar)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err,
			"strategy %s failed on bar %s", strat.Name(), bar.Time)
	}

	for _, signal := range signals {
		if err := s.applySignal(state, bar, signal); err != nil {
			return err
		}
	}

	state.RecordEquity(bar.Time)

	return nil
}

func (s *Simulator) checkProtectiveExit(state *BacktestState, bar types.Bar) error {
	if !state.HasOpenPosition() {
		return nil
	}

	position := state.Position().Unwrap()

	// stop loss is checked first so it wins a tie with take profit
	switch {
	case bar.Close <= position.StopLoss:
		_, err := state.ClosePosition(bar.Time, position.StopLoss, types.CloseReasonStopLoss)

		return err
	case bar.Close >= position.TakeProfit:
		_, err := state.ClosePosition(bar.Time, position.TakeProfit, types.CloseReasonTakeProfit)

		return err
	}

	return nil
}

func (s *Simulator) applySignal(state *BacktestState, bar types.Bar, signal types.Signal) error {
	switch signal.Kind {
	case types.SignalKindExit:
		if !state.HasOpenPosition() {
			return nil
		}

		_, err := state.ClosePosition(bar.Time, bar.Close, types.CloseReasonSignal)

		return err
	case types.SignalKindLong:
		if state.HasOpenPosition() {
			return nil
		}

		size := s.riskManager.PositionSize(state.Balance(), signal.Price, signal.StopLoss)
		if size <= 0 {
			s.log.Debug("Long signal skipped, zero position size",
				zap.Time("time", bar.Time),
				zap.Float64("price", signal.Price),
				zap.Float64("stop_loss", signal.StopLoss),
			)

			return nil
		}

		return state.OpenPosition(bar.Time, signal.Price, signal.StopLoss, signal.TakeProfit, size)
	case types.SignalKindHold:
		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidSignal, "unknown signal kind %q on bar %s", signal.Kind, bar.Time)
	}
}

func (s *Simulator) filterWindow(bars []types.Bar) []types.Bar {
	if s.config.StartTime.IsNone() && s.config.EndTime.IsNone() {
		return bars
	}

	filtered := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if s.config.InWindow(bar.Time) {
			filtered = append(filtered, bar)
		}
	}

	return filtered
}

// ValidateBars rejects sequences whose timestamps are not strictly increasing
// or whose prices are not positive.
func ValidateBars(bars []types.Bar) error {
	for i, bar := range bars {
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return errors.Newf(errors.ErrCodeInvalidBar,
				"bar %d at %s has a non-positive price (o=%v h=%v l=%v c=%v)",
				i, bar.Time, bar.Open, bar.High, bar.Low, bar.Close)
		}

		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicBars,
				"bar %d at %s is not after bar %d at %s", i, bar.Time, i-1, bars[i-1].Time)
		}
	}

	return nil
}
