package indicator

import (
	"math"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

const ColumnRSI = "rsi"

// RSI is the relative strength index computed from simple rolling means of
// gains and losses. A window without losses reads 100, a flat window has no value.
type RSI struct {
	period int
}

func NewRSI() Indicator {
	return &RSI{
		period: 14,
	}
}

func NewRSIWithPeriod(period int) Indicator {
	return &RSI{period: period}
}

func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config expects one parameter: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := parsePeriod(params[0], "period")
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

func (r *RSI) Columns() []string {
	return []string{ColumnRSI}
}

func (r *RSI) Apply(bars []types.Bar) ([]types.Bar, error) {
	if r.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", r.period)
	}

	prices := closes(bars)
	gains := nanSeries(len(prices))
	losses := nanSeries(len(prices))

	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}

	avgGain := rollingMean(gains, r.period)
	avgLoss := rollingMean(losses, r.period)
	values := nanSeries(len(prices))

	for i := range values {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}

		switch {
		case avgLoss[i] == 0 && avgGain[i] == 0:
			continue
		case avgLoss[i] == 0:
			values[i] = 100
		default:
			values[i] = 100 - 100/(1+avgGain[i]/avgLoss[i])
		}
	}

	return attach(bars, map[string][]float64{ColumnRSI: values}), nil
}
