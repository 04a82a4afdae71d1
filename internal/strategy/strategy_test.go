package strategy

import (
	"fmt"
	"testing"
	"time"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/mocks"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type LegacyAdapterTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	legacy *mocks.MockLegacyStrategy
}

func TestLegacyAdapterSuite(t *testing.T) {
	suite.Run(t, new(LegacyAdapterTestSuite))
}

func (suite *LegacyAdapterTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.legacy = mocks.NewMockLegacyStrategy(suite.ctrl)
	suite.legacy.EXPECT().Name().Return("mock").AnyTimes()
}

func (suite *LegacyAdapterTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func testBar(close float64, indicators map[string]float64) types.Bar {
	return types.Bar{
		Time:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Symbol:     "BTC-USDT",
		Open:       close,
		High:       close,
		Low:        close,
		Close:      close,
		Indicators: indicators,
	}
}

func (suite *LegacyAdapterTestSuite) TestBuyBecomesLongWithBands() {
	bar := testBar(100, nil)
	suite.legacy.EXPECT().Signal(bar).Return(types.TriStateBuy, nil)

	signals, err := FromLegacy(suite.legacy, DefaultLegacyOptions()).OnData(bar)
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)

	suite.Equal(types.SignalKindLong, signals[0].Kind)
	suite.InDelta(100.0, signals[0].Price, 1e-9)
	suite.InDelta(95.0, signals[0].StopLoss, 1e-9)
	suite.InDelta(110.0, signals[0].TakeProfit, 1e-9)
}

func (suite *LegacyAdapterTestSuite) TestSellBecomesExitAtClose() {
	bar := testBar(120, nil)
	suite.legacy.EXPECT().Signal(bar).Return(types.TriStateSell, nil)

	signals, err := FromLegacy(suite.legacy, DefaultLegacyOptions()).OnData(bar)
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)
	suite.Equal(types.SignalKindExit, signals[0].Kind)
	suite.InDelta(120.0, signals[0].Price, 1e-9)
}

func (suite *LegacyAdapterTestSuite) TestHold() {
	bar := testBar(120, nil)
	suite.legacy.EXPECT().Signal(bar).Return(types.TriStateHold, nil)

	signals, err := FromLegacy(suite.legacy, DefaultLegacyOptions()).OnData(bar)
	suite.Require().NoError(err)
	suite.Equal([]types.Signal{types.NewHoldSignal()}, signals)
}

func (suite *LegacyAdapterTestSuite) TestUnknownValueIsInvalidSignal() {
	bar := testBar(120, nil)
	suite.legacy.EXPECT().Signal(bar).Return(types.TriState(2), nil)

	_, err := FromLegacy(suite.legacy, DefaultLegacyOptions()).OnData(bar)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidSignal, errors.GetCode(err))
}

func (suite *LegacyAdapterTestSuite) TestStrategyErrorIsReturned() {
	bar := testBar(120, nil)
	suite.legacy.EXPECT().Signal(bar).Return(types.TriStateHold, fmt.Errorf("boom"))

	_, err := FromLegacy(suite.legacy, DefaultLegacyOptions()).OnData(bar)
	suite.EqualError(err, "boom")
}

func (suite *LegacyAdapterTestSuite) TestPrepareDataPassesThroughWithoutPreparer() {
	bars := []types.Bar{testBar(1, nil), testBar(2, nil)}

	adapter := FromLegacy(suite.legacy, DefaultLegacyOptions())
	prepared, err := adapter.(DataPreparer).PrepareData(bars)
	suite.NoError(err)
	suite.Equal(bars, prepared)
}

func (suite *LegacyAdapterTestSuite) TestInitializeForwardsConfig() {
	suite.legacy.EXPECT().Initialize("a: 1").Return(nil)
	suite.NoError(FromLegacy(suite.legacy, DefaultLegacyOptions()).Initialize("a: 1"))
}

func (suite *LegacyAdapterTestSuite) TestInitializeTakesConfiguredBands() {
	adapter := FromLegacy(NewEMACrossover(), DefaultLegacyOptions())
	suite.Require().NoError(adapter.Initialize("stop_loss_pct: 0.02\ntake_profit_pct: 0.04"))

	bar := testBar(100, map[string]float64{"ema_10": 2, "ema_50": 1})
	signals, err := adapter.OnData(bar)
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)
	suite.InDelta(98.0, signals[0].StopLoss, 1e-9)
	suite.InDelta(104.0, signals[0].TakeProfit, 1e-9)
}

func (suite *LegacyAdapterTestSuite) TestUnwrap() {
	adapter := FromLegacy(suite.legacy, DefaultLegacyOptions())
	suite.Equal(suite.legacy, adapter.(interface{ Unwrap() LegacyStrategy }).Unwrap())
}
