package indicator

import (
	"fmt"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

// Donchian attaches the highest high and lowest low of the period bars
// before the current one, so a close can break out of the channel.
type Donchian struct {
	period int
}

func NewDonchian() Indicator {
	return &Donchian{
		period: 20,
	}
}

func NewDonchianWithPeriod(period int) Indicator {
	return &Donchian{period: period}
}

func (d *Donchian) Name() types.IndicatorType {
	return types.IndicatorTypeDonchian
}

// Config expects one parameter: period (int).
func (d *Donchian) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := parsePeriod(params[0], "period")
	if err != nil {
		return err
	}

	d.period = period

	return nil
}

func (d *Donchian) Columns() []string {
	return []string{DonchianHighColumn(d.period), DonchianLowColumn(d.period)}
}

func (d *Donchian) Apply(bars []types.Bar) ([]types.Bar, error) {
	if d.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", d.period)
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))

	for i, bar := range bars {
		highs[i] = bar.High
		lows[i] = bar.Low
	}

	return attach(bars, map[string][]float64{
		DonchianHighColumn(d.period): rollingExtreme(highs, d.period, 1, true),
		DonchianLowColumn(d.period):  rollingExtreme(lows, d.period, 1, false),
	}), nil
}

func DonchianHighColumn(period int) string {
	return fmt.Sprintf("donchian_high_%d", period)
}

func DonchianLowColumn(period int) string {
	return fmt.Sprintf("donchian_low_%d", period)
}
