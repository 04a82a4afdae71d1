package indicator

import (
	"math"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

// Indicator computes one or more named columns over a whole bar sequence.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters. The expected parameters are indicator specific.
	Config(params ...any) error
	// Columns returns the names of the columns Apply attaches to the bars.
	Columns() []string
	// Apply returns copies of bars with the indicator columns attached. Bars
	// inside the warm-up window do not get a column.
	Apply(bars []types.Bar) ([]types.Bar, error)
}

// ApplyAll applies the indicators in order.
func ApplyAll(bars []types.Bar, indicators ...Indicator) ([]types.Bar, error) {
	var err error

	for _, indicator := range indicators {
		bars, err = indicator.Apply(bars)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to apply indicator %s", indicator.Name())
		}
	}

	return bars, nil
}

// DropIncomplete removes the bars that lack any of the given columns.
func DropIncomplete(bars []types.Bar, columns ...string) []types.Bar {
	result := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		complete := true

		for _, column := range columns {
			if _, ok := bar.Indicator(column); !ok {
				complete = false

				break
			}
		}

		if complete {
			result = append(result, bar)
		}
	}

	return result
}

// attach sets column to values[i] on a copy of bars[i] for every non-NaN value.
func attach(bars []types.Bar, columns map[string][]float64) []types.Bar {
	result := make([]types.Bar, len(bars))

	for i, bar := range bars {
		values := make(map[string]float64, len(columns))

		for column, series := range columns {
			if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
				values[column] = series[i]
			}
		}

		if len(values) > 0 {
			bar = bar.WithIndicators(values)
		}

		result[i] = bar
	}

	return result
}

func parsePeriod(value any, name string) (int, error) {
	period, ok := value.(int)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return period, nil
}

func parseFloat(value any, name string) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", name)
	}
}
