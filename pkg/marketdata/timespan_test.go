package marketdata

import (
	"testing"

	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
)

type TimespanTestSuite struct {
	suite.Suite
}

func TestTimespanSuite(t *testing.T) {
	suite.Run(t, new(TimespanTestSuite))
}

func (suite *TimespanTestSuite) TestParseTimespan() {
	for _, raw := range []string{"1s", "1m", "15m", "1h", "4h", "8h", "1d", "1w", "1M"} {
		timespan, err := ParseTimespan(raw)
		suite.NoError(err, raw)
		suite.Equal(raw, string(timespan))
	}

	suite.Equal(provider.TimespanOneHour, func() Timespan {
		timespan, _ := ParseTimespan("1h")

		return timespan
	}())
}

func (suite *TimespanTestSuite) TestParseTimespanInvalid() {
	for _, raw := range []string{"", "1H", "7m", "1y"} {
		_, err := ParseTimespan(raw)
		suite.Error(err, raw)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidInterval))
	}
}
