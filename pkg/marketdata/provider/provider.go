package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderOKX     ProviderType = "okx"
	ProviderBinance ProviderType = "binance"
)

type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// ConfigWriter configures the writer the downloaded candles are written to.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download fetches the candles of instrument within [startDate, endDate]
	// and returns the path written by the writer.
	// The context can be used to cancel the download operation.
	Download(ctx context.Context, instrument string, startDate time.Time, endDate time.Time, timespan Timespan, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a provider with its default configuration.
func NewMarketDataProvider(providerType ProviderType) (Provider, error) {
	switch providerType {
	case ProviderOKX:
		return NewOKXClient(DefaultOKXConfig())
	case ProviderBinance:
		return NewBinanceClient()
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// finalizeAfter finalizes the writer after a failed download so that partial
// data is not lost, and reports both errors if finalizing fails too.
func finalizeAfter(w writer.MarketDataWriter, cause error) error {
	if _, err := w.Finalize(); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, cause, "also failed to finalize writer: %v", err)
	}

	return cause
}
