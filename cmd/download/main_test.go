package main

import (
	"testing"
	"time"

	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata"
	"github.com/stretchr/testify/suite"
)

type DownloadCmdTestSuite struct {
	suite.Suite
}

func TestDownloadCmdSuite(t *testing.T) {
	suite.Run(t, new(DownloadCmdTestSuite))
}

func (suite *DownloadCmdTestSuite) flags() flagConfig {
	return flagConfig{
		Ticker:    "BTC-USDT",
		StartDate: "2024-01-01T00:00:00Z",
		EndDate:   "2024-01-03T00:00:00Z",
		Interval:  "1h",
		Format:    "csv",
	}
}

func (suite *DownloadCmdTestSuite) TestBuildOKXConfig() {
	flags := suite.flags()
	flags.BaseURL = "http://localhost:9999"
	flags.Retries = 2

	config, err := buildDownloadConfig("okx", flags)
	suite.Require().NoError(err)
	suite.Require().NoError(config.Validate())

	params, err := config.ToDownloadParams()
	suite.Require().NoError(err)
	suite.Equal("BTC-USDT", params.Ticker)
	suite.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), params.EndDate)

	clientConfig := config.ToClientConfig("data")
	suite.Equal(marketdata.ProviderOKX, clientConfig.ProviderType)
	suite.Equal(marketdata.WriterCSV, clientConfig.WriterType)
	suite.Require().True(clientConfig.OKX.IsSome())
	suite.Equal("http://localhost:9999", clientConfig.OKX.Unwrap().BaseURL)
	suite.Equal(2, clientConfig.OKX.Unwrap().Retries)
}

func (suite *DownloadCmdTestSuite) TestBuildBinanceConfig() {
	flags := suite.flags()
	flags.Ticker = "BTCUSDT"

	config, err := buildDownloadConfig("binance", flags)
	suite.Require().NoError(err)
	suite.Equal(marketdata.ProviderBinance, config.ToClientConfig("data").ProviderType)
}

func (suite *DownloadCmdTestSuite) TestBuildConfigErrors() {
	_, err := buildDownloadConfig("polygon", suite.flags())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))

	flags := suite.flags()
	flags.EndDate = flags.StartDate

	_, err = buildDownloadConfig("okx", flags)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
	suite.Contains(err.Error(), "endDate must be after startDate")
}

func (suite *DownloadCmdTestSuite) TestProgressReporter() {
	progress := &progressReporter{}

	progress.report(5, 0, "waiting")
	suite.Nil(progress.bar)

	progress.report(25, 100, "BTC-USDT")
	suite.Require().NotNil(progress.bar)
	suite.Equal(int64(25), progress.bar.State().CurrentNum)

	progress.report(100, 100, "BTC-USDT")
	suite.Equal(int64(100), progress.bar.State().CurrentNum)
	progress.finish()
}
