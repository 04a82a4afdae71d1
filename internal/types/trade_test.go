package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestIsClose() {
	buy := TradeRecord{Side: PurchaseTypeBuy}
	sell := TradeRecord{Side: PurchaseTypeSell}

	suite.False(buy.IsClose())
	suite.True(sell.IsClose())
}

func (suite *TradeTestSuite) TestHoldingTime() {
	entry := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sell := TradeRecord{
		Side:      PurchaseTypeSell,
		Time:      entry.Add(3 * time.Hour),
		EntryTime: entry,
	}
	suite.Equal(3*time.Hour, sell.HoldingTime())

	buy := TradeRecord{Side: PurchaseTypeBuy, Time: entry}
	suite.Equal(time.Duration(0), buy.HoldingTime())
}

func (suite *TradeTestSuite) TestPositionUnrealizedPnL() {
	position := Position{EntryPrice: 100, Size: 100}

	suite.Equal(600.0, position.UnrealizedPnL(106))
	suite.Equal(-200.0, position.UnrealizedPnL(98))
}

func (suite *TradeTestSuite) TestBarIndicators() {
	bar := Bar{Close: 100}

	_, ok := bar.Indicator("rsi")
	suite.False(ok)

	withRSI := bar.WithIndicator("rsi", 25)
	value, ok := withRSI.Indicator("rsi")
	suite.True(ok)
	suite.Equal(25.0, value)

	// the original bar is untouched
	_, ok = bar.Indicator("rsi")
	suite.False(ok)

	withBoth := withRSI.WithIndicators(map[string]float64{"ema_short": 101, "ema_long": 99})
	suite.Len(withBoth.Indicators, 3)
	suite.Len(withRSI.Indicators, 1)
}
