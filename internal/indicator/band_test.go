package indicator

import (
	"testing"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BandTestSuite struct {
	suite.Suite
}

func TestBandSuite(t *testing.T) {
	suite.Run(t, new(BandTestSuite))
}

func (suite *BandTestSuite) TestBollingerBandsApply() {
	bb := NewBollingerBandsWith(3, 2)
	suite.Equal(types.IndicatorTypeBollingerBands, bb.Name())

	bars, err := bb.Apply(closeBars(1, 2, 3))
	suite.Require().NoError(err)

	upper := column(bars, ColumnBBUpper)
	middle := column(bars, ColumnBBMiddle)
	lower := column(bars, ColumnBBLower)

	suite.Nil(upper[1])
	suite.InDelta(4.0, *upper[2], 1e-9)
	suite.InDelta(2.0, *middle[2], 1e-9)
	suite.InDelta(0.0, *lower[2], 1e-9)
}

func (suite *BandTestSuite) TestBollingerBandsConfig() {
	bb := NewBollingerBands()
	suite.Equal(20, bb.(*BollingerBands).period)

	suite.NoError(bb.Config(10, 1.5))
	suite.Equal(10, bb.(*BollingerBands).period)
	suite.InDelta(1.5, bb.(*BollingerBands).numStd, 1e-9)

	suite.Equal(errors.ErrCodeInvalidPeriod, errors.GetCode(bb.Config(1, 2.0)))
	suite.Equal(errors.ErrCodeInvalidMultiplier, errors.GetCode(bb.Config(10, -1.0)))
	suite.Equal(errors.ErrCodeMissingParameter, errors.GetCode(bb.Config(10)))
}

func (suite *BandTestSuite) TestDualThrustApply() {
	dt := NewDualThrustWith(2, 0.5, 0.5)
	suite.Equal(types.IndicatorTypeDualThrust, dt.Name())

	bars, err := dt.Apply(ohlcBars(
		ohlc{9, 10, 8, 9},
		ohlc{10, 12, 9, 11},
		ohlc{11, 13, 10, 12},
	))
	suite.Require().NoError(err)

	upper := column(bars, ColumnDualThrustUpper)
	lower := column(bars, ColumnDualThrustLower)

	suite.Nil(upper[0])
	suite.Nil(upper[1])
	// HH=12 LL=8 HC=11 LC=9, range = max(3, 3)
	suite.InDelta(12.5, *upper[2], 1e-9)
	suite.InDelta(9.5, *lower[2], 1e-9)
}

func (suite *BandTestSuite) TestDualThrustConfig() {
	dt := NewDualThrust()
	suite.NoError(dt.Config(10, 0.5, 0.6))
	suite.Equal(10, dt.(*DualThrust).lookback)
	suite.Equal(errors.ErrCodeInvalidMultiplier, errors.GetCode(dt.Config(10, 0.0, 0.6)))
	suite.Equal(errors.ErrCodeInvalidType, errors.GetCode(dt.Config(10, "a", 0.6)))
}

func (suite *BandTestSuite) TestDonchianUsesPreviousBars() {
	donchian := NewDonchianWithPeriod(2)
	suite.Equal([]string{"donchian_high_2", "donchian_low_2"}, donchian.Columns())

	bars, err := donchian.Apply(ohlcBars(
		ohlc{9, 10, 8, 9},
		ohlc{10, 12, 9, 11},
		ohlc{11, 13, 10, 12},
		ohlc{8, 9, 7, 8},
	))
	suite.Require().NoError(err)

	high := column(bars, DonchianHighColumn(2))
	low := column(bars, DonchianLowColumn(2))

	suite.Nil(high[1])
	suite.InDelta(12.0, *high[2], 1e-9)
	suite.InDelta(8.0, *low[2], 1e-9)
	suite.InDelta(13.0, *high[3], 1e-9)
	suite.InDelta(9.0, *low[3], 1e-9)
}

func (suite *BandTestSuite) TestDonchianConfig() {
	donchian := NewDonchian()
	suite.Equal(types.IndicatorTypeDonchian, donchian.Name())
	suite.NoError(donchian.Config(55))
	suite.Equal([]string{"donchian_high_55", "donchian_low_55"}, donchian.Columns())
	suite.Error(donchian.Config())
}
