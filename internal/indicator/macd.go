package indicator

import (
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

const (
	ColumnMACD       = "macd"
	ColumnMACDSignal = "macd_signal"
	ColumnMACDHist   = "macd_hist"
)

// MACD attaches the MACD line (fast EMA - slow EMA), its signal EMA and the histogram.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

func NewMACDWithPeriods(fast, slow, signal int) Indicator {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config expects three parameters: fastPeriod, slowPeriod and signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod, slowPeriod, signalPeriod (int)")
	}

	fast, err := parsePeriod(params[0], "fastPeriod")
	if err != nil {
		return err
	}

	slow, err := parsePeriod(params[1], "slowPeriod")
	if err != nil {
		return err
	}

	signal, err := parsePeriod(params[2], "signalPeriod")
	if err != nil {
		return err
	}

	if fast >= slow {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be less than slowPeriod (%d)", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

func (m *MACD) Columns() []string {
	return []string{ColumnMACD, ColumnMACDSignal, ColumnMACDHist}
}

func (m *MACD) Apply(bars []types.Bar) ([]types.Bar, error) {
	if m.fastPeriod <= 0 || m.slowPeriod <= 0 || m.signalPeriod <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidPeriod, "MACD periods must be positive")
	}

	prices := closes(bars)
	fast := ewm(prices, m.fastPeriod)
	slow := ewm(prices, m.slowPeriod)

	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = fast[i] - slow[i]
	}

	signal := ewm(line, m.signalPeriod)

	hist := make([]float64, len(prices))
	for i := range prices {
		hist[i] = line[i] - signal[i]
	}

	return attach(bars, map[string][]float64{
		ColumnMACD:       line,
		ColumnMACDSignal: signal,
		ColumnMACDHist:   hist,
	}), nil
}
