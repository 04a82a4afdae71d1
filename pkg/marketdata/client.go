package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata/provider"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata/writer"
	"go.uber.org/zap"
)

type ProviderType = provider.ProviderType

const (
	ProviderOKX     = provider.ProviderOKX
	ProviderBinance = provider.ProviderBinance
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
	WriterCSV    WriterType = "csv"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType ProviderType `validate:"required,oneof=okx binance"`
	WriterType   WriterType   `validate:"required,oneof=duckdb csv"`
	DataPath     string       `validate:"required"`
	// OKX overrides provider.DefaultOKXConfig for the OKX provider.
	OKX    optional.Option[provider.OKXConfig] `validate:"-"`
	Logger *logger.Logger                      `validate:"-"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
	Timespan  Timespan  `validate:"required"`
}

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	log        *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	log := config.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	var marketProvider provider.Provider

	switch config.ProviderType {
	case ProviderOKX:
		okxConfig := config.OKX.TakeOr(provider.DefaultOKXConfig())
		okxConfig.Logger = log

		okxClient, err := provider.NewOKXClient(okxConfig)
		if err != nil {
			return nil, err
		}

		marketProvider = okxClient
	default:
		var err error

		marketProvider, err = provider.NewMarketDataProvider(config.ProviderType)
		if err != nil {
			return nil, err
		}
	}

	return NewClientWithProvider(config, marketProvider, onProgress), nil
}

// NewClientWithProvider creates a client around an existing provider.
// The configuration is expected to be valid.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress) *Client {
	log := config.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validator.New(),
		onProgress: onProgress,
		log:        log,
	}
}

// Download initiates a market data download with the given parameters and
// returns the path of the written file.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if params.Timespan.Duration() == 0 {
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval: %s", params.Timespan)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer func() {
		if err := marketWriter.Close(); err != nil {
			c.log.Warn("Failed to close writer", zap.String("path", marketWriter.GetOutputPath()), zap.Error(err))
		}
	}()

	c.provider.ConfigWriter(marketWriter)

	path, err := c.provider.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Timespan,
		c.onProgress,
	)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download failed", err)
	}

	return path, nil
}

// OutputFileName is TICKER_START_END_INTERVAL with the extension of the writer type.
func OutputFileName(params DownloadParams, writerType WriterType) string {
	extension := "parquet"
	if writerType == WriterCSV {
		extension = "csv"
	}

	return fmt.Sprintf("%s_%s_%s_%s.%s",
		params.Ticker,
		params.StartDate.Format("2006-01-02"),
		params.EndDate.Format("2006-01-02"),
		params.Timespan,
		extension)
}

// setupWriter creates the market data writer selected by the configuration.
// The provider initializes it.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data path %s", c.config.DataPath)
	}

	outputPath := filepath.Join(c.config.DataPath, OutputFileName(params, c.config.WriterType))

	switch c.config.WriterType {
	case WriterDuckDB:
		return writer.NewDuckDBWriter(outputPath), nil
	case WriterCSV:
		return writer.NewCSVWriter(outputPath), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", c.config.WriterType)
	}
}
