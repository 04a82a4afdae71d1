package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

// UtilsTestSuite is a test suite for utils package
type UtilsTestSuite struct {
	suite.Suite
}

// TestUtilsSuite runs the test suite
func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestGetResultFolder() {
	tests := []struct {
		name          string
		dataPath      string
		strategyLabel string
		startTime     optional.Option[time.Time]
		endTime       optional.Option[time.Time]
		expectedPath  string
	}{
		{
			name:          "Basic case without time range",
			dataPath:      "/path/to/BTC-USDT_1H.parquet",
			strategyLabel: "rsi",
			startTime:     optional.None[time.Time](),
			endTime:       optional.None[time.Time](),
			expectedPath:  "/results/rsi/BTC-USDT_1H",
		},
		{
			name:          "Case with time range",
			dataPath:      "/path/to/data.csv",
			strategyLabel: "macd",
			startTime:     optional.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			endTime:       optional.Some(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
			expectedPath:  "/results/macd/20230101_20231231/data",
		},
		{
			name:          "Case with only start time",
			dataPath:      "/path/to/data.csv",
			strategyLabel: "kdj",
			startTime:     optional.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			endTime:       optional.None[time.Time](),
			expectedPath:  "/results/kdj/20230101_all/data",
		},
		{
			name:          "Case with only end time",
			dataPath:      "/path/to/data.csv",
			strategyLabel: "kdj",
			startTime:     optional.None[time.Time](),
			endTime:       optional.Some(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
			expectedPath:  "/results/kdj/all_20231231/data",
		},
		{
			name:          "Case with complex file names",
			dataPath:      "/path/to/BTC-USDT_2024-01-01_2024-02-01_1h.parquet",
			strategyLabel: "turtle_2",
			startTime:     optional.None[time.Time](),
			endTime:       optional.None[time.Time](),
			expectedPath:  "/results/turtle_2/BTC-USDT_2024-01-01_2024-02-01_1h",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := BacktestEngineV1Config{StartTime: tc.startTime, EndTime: tc.endTime}

			resultPath := getResultFolder("/results", tc.strategyLabel, tc.dataPath, config)
			suite.Equal(filepath.Clean(tc.expectedPath), filepath.Clean(resultPath))
		})
	}
}

func (suite *UtilsTestSuite) TestStrategyLabels() {
	suite.Equal(
		[]string{"rsi", "macd", "rsi_2", "rsi_3", "macd_2"},
		strategyLabels([]string{"rsi", "macd", "rsi", "rsi", "macd"}),
	)
	suite.Empty(strategyLabels(nil))
}
