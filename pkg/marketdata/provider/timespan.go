package provider

import (
	"time"

	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

// Timespan is a candle interval in the lowercase notation shared by the CLIs,
// e.g. "1m", "1h", "1d". "1M" is one month.
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

// Timespans lists every supported timespan from the shortest to the longest.
var Timespans = []Timespan{
	TimespanOneSecond, TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes,
	TimespanFifteenMinutes, TimespanThirtyMinutes, TimespanOneHour, TimespanTwoHours,
	TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours,
	TimespanOneDay, TimespanThreeDays, TimespanOneWeek, TimespanOneMonth,
}

// Duration is the nominal length of one candle. A month counts as 30 days.
func (t Timespan) Duration() time.Duration {
	switch t {
	case TimespanOneSecond:
		return time.Second
	case TimespanOneMinute:
		return time.Minute
	case TimespanThreeMinutes:
		return 3 * time.Minute
	case TimespanFiveMinutes:
		return 5 * time.Minute
	case TimespanFifteenMinutes:
		return 15 * time.Minute
	case TimespanThirtyMinutes:
		return 30 * time.Minute
	case TimespanOneHour:
		return time.Hour
	case TimespanTwoHours:
		return 2 * time.Hour
	case TimespanFourHours:
		return 4 * time.Hour
	case TimespanSixHours:
		return 6 * time.Hour
	case TimespanEightHours:
		return 8 * time.Hour
	case TimespanTwelveHours:
		return 12 * time.Hour
	case TimespanOneDay:
		return 24 * time.Hour
	case TimespanThreeDays:
		return 72 * time.Hour
	case TimespanOneWeek:
		return 7 * 24 * time.Hour
	case TimespanOneMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// OKXBar converts the timespan to the bar parameter of the OKX candles API.
func (t Timespan) OKXBar() (string, error) {
	switch t {
	case TimespanOneSecond, TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes,
		TimespanFifteenMinutes, TimespanThirtyMinutes, TimespanOneMonth:
		return string(t), nil
	case TimespanOneHour:
		return "1H", nil
	case TimespanTwoHours:
		return "2H", nil
	case TimespanFourHours:
		return "4H", nil
	case TimespanSixHours:
		return "6H", nil
	case TimespanTwelveHours:
		return "12H", nil
	case TimespanOneDay:
		return "1D", nil
	case TimespanThreeDays:
		return "3D", nil
	case TimespanOneWeek:
		return "1W", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported timespan for OKX: %s", t)
	}
}

// BinanceInterval converts the timespan to a Binance kline interval.
func (t Timespan) BinanceInterval() (string, error) {
	if t.Duration() == 0 {
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported timespan for Binance: %s", t)
	}

	return string(t), nil
}
