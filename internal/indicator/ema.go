package indicator

import (
	"fmt"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

// EMA indicator implements Exponential Moving Average calculation.
// Every bar gets a value: the series is seeded with the first close.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20,
	}
}

// NewEMAWithPeriod creates an EMA over period bars.
func NewEMAWithPeriod(period int) Indicator {
	return &EMA{period: period}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := parsePeriod(params[0], "period")
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// Column is the name of the column the EMA is written to, e.g. ema_20.
func (e *EMA) Column() string {
	return EMAColumn(e.period)
}

func (e *EMA) Columns() []string {
	return []string{e.Column()}
}

func (e *EMA) Apply(bars []types.Bar) ([]types.Bar, error) {
	if e.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", e.period)
	}

	return attach(bars, map[string][]float64{e.Column(): ewm(closes(bars), e.period)}), nil
}

// EMAColumn returns the column name of an EMA over period bars.
func EMAColumn(period int) string {
	return fmt.Sprintf("ema_%d", period)
}
