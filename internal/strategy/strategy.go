package strategy

import (
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

// Strategy turns one bar into zero or more signals.
type Strategy interface {
	// Name returns the registered name of the strategy, e.g. "rsi".
	Name() string
	// Initialize parses the YAML parameters of the strategy. An empty config keeps the defaults.
	Initialize(config string) error
	// OnData returns the signals for the given bar, in the order they must be applied.
	OnData(bar types.Bar) ([]types.Signal, error)
}

// DataPreparer is implemented by strategies that need indicator columns.
// The engine calls PrepareData once, before the first bar is processed,
// and runs the simulation over the returned bars.
type DataPreparer interface {
	PrepareData(bars []types.Bar) ([]types.Bar, error)
}

// LegacyStrategy is a strategy that answers with a single tri-state value per bar.
type LegacyStrategy interface {
	Name() string
	Initialize(config string) error
	Signal(bar types.Bar) (types.TriState, error)
}

// LegacyOptions are the stop loss and take profit bands applied to the
// long signals of a legacy strategy, as fractions of the bar close.
type LegacyOptions struct {
	StopLossPct   float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" validate:"gte=0,lt=1" jsonschema:"title=Stop Loss,description=Stop loss distance below the entry as a fraction,default=0.05"`
	TakeProfitPct float64 `yaml:"take_profit_pct" json:"take_profit_pct" validate:"gte=0" jsonschema:"title=Take Profit,description=Take profit distance above the entry as a fraction,default=0.1"`
}

// DefaultLegacyOptions returns 5% stop loss and 10% take profit bands.
func DefaultLegacyOptions() LegacyOptions {
	return LegacyOptions{
		StopLossPct:   0.05,
		TakeProfitPct: 0.10,
	}
}

type legacyAdapter struct {
	legacy  LegacyStrategy
	options LegacyOptions
}

// FromLegacy adapts a tri-state strategy to the Strategy interface.
// Buy becomes a long at the bar close with the option bands, sell becomes
// an exit at the bar close and hold becomes a hold signal.
func FromLegacy(legacy LegacyStrategy, options LegacyOptions) Strategy {
	return &legacyAdapter{
		legacy:  legacy,
		options: options,
	}
}

func (a *legacyAdapter) Name() string {
	return a.legacy.Name()
}

// Initialize configures the wrapped strategy. Strategies that carry their
// own bands in their config replace the adapter options.
func (a *legacyAdapter) Initialize(config string) error {
	if err := a.legacy.Initialize(config); err != nil {
		return err
	}

	if configured, ok := a.legacy.(interface{ Options() LegacyOptions }); ok {
		a.options = configured.Options()
	}

	return nil
}

func (a *legacyAdapter) OnData(bar types.Bar) ([]types.Signal, error) {
	value, err := a.legacy.Signal(bar)
	if err != nil {
		return nil, err
	}

	signal, err := a.toSignal(value, bar)
	if err != nil {
		return nil, err
	}

	return []types.Signal{signal}, nil
}

func (a *legacyAdapter) toSignal(value types.TriState, bar types.Bar) (types.Signal, error) {
	switch value {
	case types.TriStateBuy:
		return types.NewLongSignal(
			bar.Close,
			bar.Close*(1-a.options.StopLossPct),
			bar.Close*(1+a.options.TakeProfitPct),
			a.legacy.Name()+" buy",
		), nil
	case types.TriStateSell:
		return types.NewExitSignal(bar.Close, a.legacy.Name()+" sell"), nil
	case types.TriStateHold:
		return types.NewHoldSignal(), nil
	default:
		return types.Signal{}, errors.Newf(errors.ErrCodeInvalidSignal,
			"strategy %s returned unknown tri-state value %d", a.legacy.Name(), value)
	}
}

// PrepareData forwards to the wrapped strategy when it prepares data itself.
func (a *legacyAdapter) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	if preparer, ok := a.legacy.(DataPreparer); ok {
		return preparer.PrepareData(bars)
	}

	return bars, nil
}

// Unwrap returns the adapted legacy strategy.
func (a *legacyAdapter) Unwrap() LegacyStrategy {
	return a.legacy
}
