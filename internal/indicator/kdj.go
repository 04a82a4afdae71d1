package indicator

import (
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

const (
	ColumnKDJK = "kdj_k"
	ColumnKDJD = "kdj_d"
	ColumnKDJJ = "kdj_j"
)

// KDJ is the stochastic oscillator with smoothed K and D lines.
//
//	RSV = (close - lowest low) / (highest high - lowest low) * 100 over fastK bars
//	K   = ((slowK-1)*K' + RSV) / slowK, seeded with 50
//	D   = ((slowD-1)*D' + K) / slowD, seeded with 50
//	J   = 3K - 2D
type KDJ struct {
	fastK int
	slowK int
	slowD int
}

func NewKDJ() Indicator {
	return &KDJ{
		fastK: 9,
		slowK: 3,
		slowD: 3,
	}
}

func NewKDJWithPeriods(fastK, slowK, slowD int) Indicator {
	return &KDJ{
		fastK: fastK,
		slowK: slowK,
		slowD: slowD,
	}
}

func (k *KDJ) Name() types.IndicatorType {
	return types.IndicatorTypeKDJ
}

// Config expects three parameters: fastK, slowK and slowD (int).
func (k *KDJ) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastK, slowK, slowD (int)")
	}

	fastK, err := parsePeriod(params[0], "fastK")
	if err != nil {
		return err
	}

	slowK, err := parsePeriod(params[1], "slowK")
	if err != nil {
		return err
	}

	slowD, err := parsePeriod(params[2], "slowD")
	if err != nil {
		return err
	}

	k.fastK = fastK
	k.slowK = slowK
	k.slowD = slowD

	return nil
}

func (k *KDJ) Columns() []string {
	return []string{ColumnKDJK, ColumnKDJD, ColumnKDJJ}
}

func (k *KDJ) Apply(bars []types.Bar) ([]types.Bar, error) {
	if k.fastK <= 0 || k.slowK <= 0 || k.slowD <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidPeriod, "KDJ periods must be positive")
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))

	for i, bar := range bars {
		highs[i] = bar.High
		lows[i] = bar.Low
	}

	highest := rollingExtreme(highs, k.fastK, 0, true)
	lowest := rollingExtreme(lows, k.fastK, 0, false)

	kLine := nanSeries(len(bars))
	dLine := nanSeries(len(bars))
	jLine := nanSeries(len(bars))

	prevK, prevD := 50.0, 50.0

	for i := k.fastK - 1; i < len(bars); i++ {
		rsv := 50.0
		if spread := highest[i] - lowest[i]; spread > 0 {
			rsv = (bars[i].Close - lowest[i]) / spread * 100
		}

		kValue := (float64(k.slowK-1)*prevK + rsv) / float64(k.slowK)
		dValue := (float64(k.slowD-1)*prevD + kValue) / float64(k.slowD)

		kLine[i] = kValue
		dLine[i] = dValue
		jLine[i] = 3*kValue - 2*dValue

		prevK, prevD = kValue, dValue
	}

	return attach(bars, map[string][]float64{
		ColumnKDJK: kLine,
		ColumnKDJD: dLine,
		ColumnKDJJ: jLine,
	}), nil
}
