package indicator

import (
	"fmt"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

// MA is the simple moving average of the close.
type MA struct {
	period int
}

func NewMA() Indicator {
	return &MA{
		period: 20,
	}
}

func NewMAWithPeriod(period int) Indicator {
	return &MA{period: period}
}

func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects one parameter: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := parsePeriod(params[0], "period")
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

func (m *MA) Column() string {
	return fmt.Sprintf("ma_%d", m.period)
}

func (m *MA) Columns() []string {
	return []string{m.Column()}
}

func (m *MA) Apply(bars []types.Bar) ([]types.Bar, error) {
	if m.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", m.period)
	}

	return attach(bars, map[string][]float64{m.Column(): rollingMean(closes(bars), m.period)}), nil
}
