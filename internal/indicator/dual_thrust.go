package indicator

import (
	"math"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

const (
	ColumnDualThrustUpper = "dual_thrust_upper"
	ColumnDualThrustLower = "dual_thrust_lower"
)

// DualThrust attaches breakout bands around the bar open. The range is
// max(HH - LC, HC - LL) over the lookback bars before the current one.
type DualThrust struct {
	lookback int
	k1       float64
	k2       float64
}

func NewDualThrust() Indicator {
	return &DualThrust{
		lookback: 20,
		k1:       0.7,
		k2:       0.7,
	}
}

func NewDualThrustWith(lookback int, k1, k2 float64) Indicator {
	return &DualThrust{
		lookback: lookback,
		k1:       k1,
		k2:       k2,
	}
}

func (d *DualThrust) Name() types.IndicatorType {
	return types.IndicatorTypeDualThrust
}

// Config expects three parameters: lookback (int), k1 and k2 (float64).
func (d *DualThrust) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: lookback (int), k1, k2 (float64)")
	}

	lookback, err := parsePeriod(params[0], "lookback")
	if err != nil {
		return err
	}

	k1, err := parseFloat(params[1], "k1")
	if err != nil {
		return err
	}

	k2, err := parseFloat(params[2], "k2")
	if err != nil {
		return err
	}

	if k1 <= 0 || k2 <= 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "k1 and k2 must be positive, got %v and %v", k1, k2)
	}

	d.lookback = lookback
	d.k1 = k1
	d.k2 = k2

	return nil
}

func (d *DualThrust) Columns() []string {
	return []string{ColumnDualThrustUpper, ColumnDualThrustLower}
}

func (d *DualThrust) Apply(bars []types.Bar) ([]types.Bar, error) {
	if d.lookback <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "lookback must be a positive integer, got %d", d.lookback)
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	prices := closes(bars)

	for i, bar := range bars {
		highs[i] = bar.High
		lows[i] = bar.Low
	}

	hh := rollingExtreme(highs, d.lookback, 1, true)
	ll := rollingExtreme(lows, d.lookback, 1, false)
	hc := rollingExtreme(prices, d.lookback, 1, true)
	lc := rollingExtreme(prices, d.lookback, 1, false)

	upper := nanSeries(len(bars))
	lower := nanSeries(len(bars))

	for i, bar := range bars {
		if math.IsNaN(hh[i]) {
			continue
		}

		spread := math.Max(hh[i]-lc[i], hc[i]-ll[i])
		upper[i] = bar.Open + d.k1*spread
		lower[i] = bar.Open - d.k2*spread
	}

	return attach(bars, map[string][]float64{
		ColumnDualThrustUpper: upper,
		ColumnDualThrustLower: lower,
	}), nil
}
