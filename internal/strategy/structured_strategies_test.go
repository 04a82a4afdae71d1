package strategy

import (
	"testing"

	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StructuredStrategiesTestSuite struct {
	suite.Suite
}

func TestStructuredStrategiesSuite(t *testing.T) {
	suite.Run(t, new(StructuredStrategiesTestSuite))
}

func rsiBar(close, rsi float64) types.Bar {
	return testBar(close, map[string]float64{indicator.ColumnRSI: rsi})
}

func (suite *StructuredStrategiesTestSuite) TestRSIEntersAndExitsOnce() {
	s := NewRSI()

	signals, err := s.OnData(rsiBar(100, 25))
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)
	suite.Equal(types.SignalKindLong, signals[0].Kind)
	suite.InDelta(100.0, signals[0].Price, 1e-9)
	suite.InDelta(95.0, signals[0].StopLoss, 1e-9)
	suite.InDelta(110.0, signals[0].TakeProfit, 1e-9)

	// already long
	signals, err = s.OnData(rsiBar(99, 20))
	suite.Require().NoError(err)
	suite.Empty(signals)

	signals, err = s.OnData(rsiBar(120, 75))
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)
	suite.Equal(types.SignalKindExit, signals[0].Kind)
	suite.InDelta(120.0, signals[0].Price, 1e-9)

	// already flat
	signals, err = s.OnData(rsiBar(121, 80))
	suite.Require().NoError(err)
	suite.Empty(signals)
}

func (suite *StructuredStrategiesTestSuite) TestRSINeutralZone() {
	s := NewRSI()

	signals, err := s.OnData(rsiBar(100, 50))
	suite.NoError(err)
	suite.Empty(signals)

	signals, err = s.OnData(rsiBar(100, 30))
	suite.NoError(err)
	suite.Empty(signals)
}

func (suite *StructuredStrategiesTestSuite) TestRSIInitializeResetsMemory() {
	s := NewRSI()

	_, err := s.OnData(rsiBar(100, 10))
	suite.Require().NoError(err)
	suite.True(s.inPosition)

	suite.Require().NoError(s.Initialize("oversold: 20\noverbought: 80"))
	suite.False(s.inPosition)

	signals, err := s.OnData(rsiBar(100, 25))
	suite.NoError(err)
	suite.Empty(signals)
}

func (suite *StructuredStrategiesTestSuite) TestRSIConfigValidation() {
	err := NewRSI().Initialize("oversold: 80\noverbought: 20")
	suite.Equal(errors.ErrCodeStrategyConfigError, errors.GetCode(err))

	err = NewRSI().Initialize("period: 0")
	suite.Equal(errors.ErrCodeStrategyConfigError, errors.GetCode(err))
}

func (suite *StructuredStrategiesTestSuite) TestRSIMissingColumn() {
	_, err := NewRSI().OnData(testBar(100, nil))
	suite.Equal(errors.ErrCodeMissingIndicator, errors.GetCode(err))
}

func (suite *StructuredStrategiesTestSuite) TestRSIPrepareData() {
	s := NewRSI()
	suite.Require().NoError(s.Initialize("period: 5"))

	prepared, err := s.PrepareData(generateBars(30))
	suite.Require().NoError(err)
	suite.Len(prepared, 25)
}

func macdBar(close, line, signal float64) types.Bar {
	return testBar(close, map[string]float64{indicator.ColumnMACD: line, indicator.ColumnMACDSignal: signal})
}

func (suite *StructuredStrategiesTestSuite) TestMACDEntersAboveZero() {
	s := NewMACD()

	// bullish but below zero
	signals, err := s.OnData(macdBar(100, -0.5, -1))
	suite.Require().NoError(err)
	suite.Empty(signals)

	signals, err = s.OnData(macdBar(100, 1, 0.5))
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)
	suite.Equal(types.SignalKindLong, signals[0].Kind)
	suite.InDelta(95.0, signals[0].StopLoss, 1e-9)
	suite.InDelta(108.0, signals[0].TakeProfit, 1e-9)

	// bearish but above zero
	signals, err = s.OnData(macdBar(100, 0.2, 0.5))
	suite.Require().NoError(err)
	suite.Empty(signals)

	signals, err = s.OnData(macdBar(90, -1, -0.5))
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)
	suite.Equal(types.SignalKindExit, signals[0].Kind)
	suite.InDelta(90.0, signals[0].Price, 1e-9)
}

func (suite *StructuredStrategiesTestSuite) TestMACDConfigValidation() {
	suite.NoError(NewMACD().Initialize("fast: 5\nslow: 10\nsignal: 3"))

	err := NewMACD().Initialize("fast: 10\nslow: 5")
	suite.Equal(errors.ErrCodeStrategyConfigError, errors.GetCode(err))
}

func (suite *StructuredStrategiesTestSuite) TestMACDPrepareDataKeepsEveryBar() {
	prepared, err := NewMACD().PrepareData(generateBars(40))
	suite.Require().NoError(err)
	suite.Len(prepared, 40)
}
