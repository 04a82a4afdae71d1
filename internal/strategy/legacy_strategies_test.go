package strategy

import (
	"testing"
	"time"

	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/mocks"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type LegacyStrategiesTestSuite struct {
	suite.Suite
}

func TestLegacyStrategiesSuite(t *testing.T) {
	suite.Run(t, new(LegacyStrategiesTestSuite))
}

func generateBars(count int) []types.Bar {
	config := mocks.DefaultConfig()
	config.Count = count

	return mocks.NewDataGenerator(42).Generate(config)
}

func (suite *LegacyStrategiesTestSuite) signal(s LegacyStrategy, close float64, indicators map[string]float64) types.TriState {
	value, err := s.Signal(testBar(close, indicators))
	suite.Require().NoError(err)

	return value
}

func (suite *LegacyStrategiesTestSuite) TestEMACrossover() {
	s := NewEMACrossover()

	suite.Equal(types.TriStateBuy, suite.signal(s, 100, map[string]float64{"ema_10": 101, "ema_50": 100}))
	suite.Equal(types.TriStateSell, suite.signal(s, 100, map[string]float64{"ema_10": 99, "ema_50": 100}))
	suite.Equal(types.TriStateHold, suite.signal(s, 100, map[string]float64{"ema_10": 100, "ema_50": 100}))

	_, err := s.Signal(testBar(100, map[string]float64{"ema_10": 1}))
	suite.Equal(errors.ErrCodeMissingIndicator, errors.GetCode(err))
}

func (suite *LegacyStrategiesTestSuite) TestEMACrossoverConfig() {
	s := NewEMACrossover()
	suite.Require().NoError(s.Initialize("short_period: 5\nlong_period: 20"))
	suite.Equal(types.TriStateBuy, suite.signal(s, 100, map[string]float64{"ema_5": 2, "ema_20": 1}))

	err := NewEMACrossover().Initialize("short_period: 20\nlong_period: 5")
	suite.Equal(errors.ErrCodeStrategyConfigError, errors.GetCode(err))

	err = NewEMACrossover().Initialize("short_period: [")
	suite.Equal(errors.ErrCodeStrategyConfigError, errors.GetCode(err))

	err = NewEMACrossover().Initialize("stop_loss_pct: 1.5")
	suite.Equal(errors.ErrCodeStrategyConfigError, errors.GetCode(err))
}

func (suite *LegacyStrategiesTestSuite) TestEMACrossoverPrepareData() {
	bars := generateBars(60)

	prepared, err := NewEMACrossover().PrepareData(bars)
	suite.Require().NoError(err)
	suite.Len(prepared, 60)

	_, ok := prepared[0].Indicator("ema_50")
	suite.True(ok)
}

func (suite *LegacyStrategiesTestSuite) TestBollinger() {
	s := NewBollinger()
	bands := map[string]float64{indicator.ColumnBBUpper: 110, indicator.ColumnBBLower: 90}

	suite.Equal(types.TriStateBuy, suite.signal(s, 89, bands))
	suite.Equal(types.TriStateSell, suite.signal(s, 111, bands))
	suite.Equal(types.TriStateHold, suite.signal(s, 90, bands))
	suite.Equal(types.TriStateHold, suite.signal(s, 110, bands))
}

func (suite *LegacyStrategiesTestSuite) TestBollingerPrepareDataDropsWarmup() {
	s := NewBollinger()
	suite.Require().NoError(s.Initialize("window: 5"))

	prepared, err := s.PrepareData(generateBars(20))
	suite.Require().NoError(err)
	suite.Len(prepared, 16)
}

func (suite *LegacyStrategiesTestSuite) TestDualThrust() {
	s := NewDualThrust()
	bands := map[string]float64{indicator.ColumnDualThrustUpper: 105, indicator.ColumnDualThrustLower: 95}

	suite.Equal(types.TriStateBuy, suite.signal(s, 106, bands))
	suite.Equal(types.TriStateSell, suite.signal(s, 94, bands))
	suite.Equal(types.TriStateHold, suite.signal(s, 100, bands))
}

func (suite *LegacyStrategiesTestSuite) TestDualThrustPrepareDataDropsLookback() {
	s := NewDualThrust()
	suite.Require().NoError(s.Initialize("lookback: 4"))

	prepared, err := s.PrepareData(generateBars(10))
	suite.Require().NoError(err)
	suite.Len(prepared, 6)
}

func (suite *LegacyStrategiesTestSuite) TestKDJ() {
	s := NewKDJ()

	kdj := func(k, d, j float64) map[string]float64 {
		return map[string]float64{indicator.ColumnKDJK: k, indicator.ColumnKDJD: d, indicator.ColumnKDJJ: j}
	}

	suite.Equal(types.TriStateBuy, suite.signal(s, 100, kdj(60, 50, 79)))
	suite.Equal(types.TriStateHold, suite.signal(s, 100, kdj(60, 50, 80)))
	suite.Equal(types.TriStateSell, suite.signal(s, 100, kdj(40, 50, 21)))
	suite.Equal(types.TriStateHold, suite.signal(s, 100, kdj(40, 50, 20)))
	suite.Equal(types.TriStateHold, suite.signal(s, 100, kdj(50, 50, 50)))
}

func (suite *LegacyStrategiesTestSuite) TestTurtle() {
	s := NewTurtle()
	channel := map[string]float64{"donchian_high_20": 110, "donchian_low_10": 90}

	suite.Equal(types.TriStateBuy, suite.signal(s, 111, channel))
	suite.Equal(types.TriStateSell, suite.signal(s, 89, channel))
	suite.Equal(types.TriStateHold, suite.signal(s, 100, channel))
}

func (suite *LegacyStrategiesTestSuite) TestTurtlePrepareData() {
	s := NewTurtle()
	suite.Require().NoError(s.Initialize("entry_window: 3\nexit_window: 2"))

	bars := generateBars(10)
	prepared, err := s.PrepareData(bars)
	suite.Require().NoError(err)
	suite.Require().Len(prepared, 7)
	suite.Equal(bars[3].Time, prepared[0].Time)

	high, ok := prepared[0].Indicator("donchian_high_3")
	suite.True(ok)
	suite.InDelta(max(bars[0].High, bars[1].High, bars[2].High), high, 1e-9)
}

func (suite *LegacyStrategiesTestSuite) TestSignalsAtEveryPreparedBar() {
	for _, s := range []interface {
		LegacyStrategy
		DataPreparer
	}{NewEMACrossover(), NewBollinger(), NewDualThrust(), NewKDJ(), NewTurtle()} {
		prepared, err := s.PrepareData(generateBars(200))
		suite.Require().NoError(err, s.Name())
		suite.NotEmpty(prepared, s.Name())

		for _, bar := range prepared {
			_, err := s.Signal(bar)
			suite.Require().NoError(err, "%s at %s", s.Name(), bar.Time.Format(time.RFC3339))
		}
	}
}
