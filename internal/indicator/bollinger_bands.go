package indicator

import (
	"math"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

const (
	ColumnBBUpper  = "bb_upper"
	ColumnBBMiddle = "bb_middle"
	ColumnBBLower  = "bb_lower"
)

// BollingerBands attaches the rolling mean of the close and the bands
// numStd sample standard deviations above and below it.
type BollingerBands struct {
	period int
	numStd float64
}

func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,
		numStd: 2,
	}
}

func NewBollingerBandsWith(period int, numStd float64) Indicator {
	return &BollingerBands{
		period: period,
		numStd: numStd,
	}
}

func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config expects two parameters: period (int) and numStd (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), numStd (float64)")
	}

	period, err := parsePeriod(params[0], "period")
	if err != nil {
		return err
	}

	if period < 2 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be at least 2, got %d", period)
	}

	numStd, err := parseFloat(params[1], "numStd")
	if err != nil {
		return err
	}

	if numStd <= 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "numStd must be positive, got %v", numStd)
	}

	bb.period = period
	bb.numStd = numStd

	return nil
}

func (bb *BollingerBands) Columns() []string {
	return []string{ColumnBBUpper, ColumnBBMiddle, ColumnBBLower}
}

func (bb *BollingerBands) Apply(bars []types.Bar) ([]types.Bar, error) {
	if bb.period < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be at least 2, got %d", bb.period)
	}

	prices := closes(bars)
	middle := rollingMean(prices, bb.period)
	std := rollingStd(prices, bb.period)
	upper := nanSeries(len(prices))
	lower := nanSeries(len(prices))

	for i := range prices {
		if math.IsNaN(middle[i]) || math.IsNaN(std[i]) {
			continue
		}

		upper[i] = middle[i] + bb.numStd*std[i]
		lower[i] = middle[i] - bb.numStd*std[i]
	}

	return attach(bars, map[string][]float64{
		ColumnBBUpper:  upper,
		ColumnBBMiddle: middle,
		ColumnBBLower:  lower,
	}), nil
}
