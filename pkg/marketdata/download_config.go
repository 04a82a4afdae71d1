package marketdata

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata/provider"
)

// BaseDownloadConfig contains common fields for all download configurations.
type BaseDownloadConfig struct {
	Ticker    string `json:"ticker" jsonschema:"title=Ticker,description=The instrument to download data for (e.g. BTC-USDT or BTCUSDT),required" validate:"required"`
	StartDate string `json:"startDate" jsonschema:"title=Start Date,description=Start date,format=date-time,required" validate:"required"`
	EndDate   string `json:"endDate" jsonschema:"title=End Date,description=End date,format=date-time,required" validate:"required"`
	Interval  string `json:"interval" jsonschema:"title=Interval,description=Data interval,required,enum=1s,enum=1m,enum=3m,enum=5m,enum=15m,enum=30m,enum=1h,enum=2h,enum=4h,enum=6h,enum=8h,enum=12h,enum=1d,enum=3d,enum=1w,enum=1M" validate:"required,oneof=1s 1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	Format    string `json:"format,omitempty" jsonschema:"title=Format,description=Output file format,enum=duckdb,enum=csv,default=duckdb" validate:"omitempty,oneof=duckdb csv"`
}

// OKXDownloadConfig contains configuration for downloading from OKX.
// The public candles API does not require authentication.
type OKXDownloadConfig struct {
	BaseDownloadConfig

	BaseURL string `json:"baseUrl,omitempty" jsonschema:"title=Base URL,description=OKX REST endpoint,default=https://www.okx.com" validate:"omitempty,url"`
	Retries int    `json:"retries,omitempty" jsonschema:"title=Retries,description=Attempts per request,default=5" validate:"omitempty,gte=1"`
}

// BinanceDownloadConfig contains configuration for downloading from Binance.
// Binance public market data API does not require authentication.
type BinanceDownloadConfig struct {
	BaseDownloadConfig
}

// Validate validates the BaseDownloadConfig fields.
func (c *BaseDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	startDate, err := time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid startDate format, expected RFC3339", err)
	}

	endDate, err := time.Parse(time.RFC3339, c.EndDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid endDate format, expected RFC3339", err)
	}

	if !endDate.After(startDate) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "endDate must be after startDate")
	}

	return nil
}

// Validate validates the OKXDownloadConfig.
func (c *OKXDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return c.BaseDownloadConfig.Validate()
}

// Validate validates the BinanceDownloadConfig.
func (c *BinanceDownloadConfig) Validate() error {
	return c.BaseDownloadConfig.Validate()
}

// ToDownloadParams converts a BaseDownloadConfig to DownloadParams.
func (c *BaseDownloadConfig) ToDownloadParams() (DownloadParams, error) {
	startDate, err := time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return DownloadParams{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse startDate", err)
	}

	endDate, err := time.Parse(time.RFC3339, c.EndDate)
	if err != nil {
		return DownloadParams{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse endDate", err)
	}

	timespan, err := ParseTimespan(c.Interval)
	if err != nil {
		return DownloadParams{}, err
	}

	return DownloadParams{
		Ticker:    c.Ticker,
		StartDate: startDate,
		EndDate:   endDate,
		Timespan:  timespan,
	}, nil
}

func (c *BaseDownloadConfig) writerType() WriterType {
	if c.Format == "" {
		return WriterDuckDB
	}

	return WriterType(c.Format)
}

// ToClientConfig converts an OKXDownloadConfig to ClientConfig.
func (c *OKXDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	okxConfig := optional.None[provider.OKXConfig]()

	if c.BaseURL != "" || c.Retries > 0 {
		config := provider.DefaultOKXConfig()
		if c.BaseURL != "" {
			config.BaseURL = c.BaseURL
		}

		if c.Retries > 0 {
			config.Retries = c.Retries
		}

		okxConfig = optional.Some(config)
	}

	return ClientConfig{
		ProviderType: ProviderOKX,
		WriterType:   c.writerType(),
		DataPath:     dataPath,
		OKX:          okxConfig,
	}
}

// ToClientConfig converts a BinanceDownloadConfig to ClientConfig.
func (c *BinanceDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType: ProviderBinance,
		WriterType:   c.writerType(),
		DataPath:     dataPath,
	}
}

// ParseOKXConfig parses JSON into an OKXDownloadConfig.
func ParseOKXConfig(jsonConfig string) (*OKXDownloadConfig, error) {
	var config OKXDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseBinanceConfig parses JSON into a BinanceDownloadConfig.
func ParseBinanceConfig(jsonConfig string) (*BinanceDownloadConfig, error) {
	var config BinanceDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
